package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"underwriting-backend/internal/domain/document"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, d *document.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) UpdateContent(ctx context.Context, documentID string, content []byte, blobKey string) error {
	res := r.db.WithContext(ctx).Model(&document.Document{}).
		Where("document_id = ?", documentID).
		Updates(map[string]any{"content": content, "blob_key": blobKey})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) GetByDocumentID(ctx context.Context, documentID string) (*document.Document, error) {
	return r.first(r.db.WithContext(ctx).Where("document_id = ?", documentID))
}

// metadata columns; content stays in the row
var documentMetaColumns = []string{
	"id", "document_id", "application_id", "type", "filename",
	"content_type", "size", "uploaded_by", "uploaded_at", "blob_key",
}

func (r *DocumentRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]document.Document, error) {
	var out []document.Document
	err := r.db.WithContext(ctx).
		Select(documentMetaColumns).
		Where("application_id = ?", applicationID).
		Order("uploaded_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DocumentRepository) LatestByApplicationID(ctx context.Context, applicationID string) (*document.Document, error) {
	return r.first(r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("uploaded_at DESC, id DESC"))
}

func (r *DocumentRepository) first(q *gorm.DB) (*document.Document, error) {
	var out document.Document
	if err := q.Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
