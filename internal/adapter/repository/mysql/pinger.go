package mysql

import (
	"context"

	"gorm.io/gorm"
)

// Pinger reports database reachability for the admin health view.
type Pinger struct{ db *gorm.DB }

func NewPinger(db *gorm.DB) *Pinger { return &Pinger{db: db} }

func (p *Pinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
