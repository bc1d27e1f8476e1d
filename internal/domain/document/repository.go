package document

import "context"

type Repository interface {
	Create(ctx context.Context, d *Document) error
	// UpdateContent stores the binary payload (inline or blob key) after metadata insert.
	UpdateContent(ctx context.Context, documentID string, content []byte, blobKey string) error
	GetByDocumentID(ctx context.Context, documentID string) (*Document, error)
	// ListByApplicationID returns metadata only, oldest first.
	ListByApplicationID(ctx context.Context, applicationID string) ([]Document, error)
	LatestByApplicationID(ctx context.Context, applicationID string) (*Document, error)
}
