package application

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"underwriting-backend/internal/domain/apperr"
	domain "underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/document"
	"underwriting-backend/internal/domain/uow"
	"underwriting-backend/internal/domain/user"
	"underwriting-backend/pkg/id"
)

const MaxDocumentSize = 10 << 20

var uploadRoles = map[user.Role]bool{
	user.RoleCustomer: true,
	user.RoleAnalyst:  true,
	user.RoleAdmin:    true,
}

// BlobKey is where document content lives in the blob store.
func BlobKey(appID, documentID, filename string) string {
	return path.Join("applications", appID, documentID, path.Base(filename))
}

// UploadDocument attaches a file to an application in any status.
//
// Metadata and the uploaded_document audit event commit together; the
// content write follows as a second step. If that step fails the metadata
// stays and the returned error carries the document id.
func (u *Usecase) UploadDocument(ctx context.Context, actor user.Actor, in UploadInput) (string, error) {
	if !uploadRoles[actor.Role] {
		return "", apperr.Forbidden("role %s cannot upload documents", actor.Role)
	}
	filename := strings.TrimSpace(in.Filename)
	if filename == "" {
		return "", apperr.Validation("filename is required", apperr.FieldError{Field: "filename", Message: "is required"})
	}
	if len(in.Content) > MaxDocumentSize {
		return "", apperr.Validation("file too large", apperr.FieldError{Field: "file", Message: "must be at most 10MB"})
	}

	doc := &document.Document{
		DocumentID:    id.New("DOC"),
		ApplicationID: in.ApplicationID,
		Type:          document.ParseType(string(in.Type)),
		Filename:      filename,
		ContentType:   in.ContentType,
		Size:          int64(len(in.Content)),
		UploadedBy:    actor.ID,
		UploadedAt:    u.now().UTC(),
	}
	var event *audit.Event
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domain.Application) error {
		if actor.Role == user.RoleCustomer && a.CustomerID != actor.ID {
			return apperr.Forbidden("application %s belongs to another customer", a.ApplicationID)
		}
		if err := r.Documents.Create(ctx, doc); err != nil {
			return apperr.Internal("create document", err)
		}
		event = u.newEvent(a.ApplicationID, actor, audit.ActionUploadedDocument, map[string]any{
			"document_id": doc.DocumentID,
			"filename":    doc.Filename,
			"type":        string(doc.Type),
			"size":        doc.Size,
		})
		if err := r.Audit.Create(ctx, event); err != nil {
			return apperr.Internal("record audit event", err)
		}
		return nil
	})
	if err != nil {
		return "", mapStoreErr(in.ApplicationID, err)
	}
	u.publish(ctx, *event)

	if err := u.storeContent(ctx, doc, in.Content); err != nil {
		u.metrics.IncSideEffectFailure("document_content")
		u.logger.WarnContext(ctx, "document metadata saved without content",
			slog.String("document_id", doc.DocumentID), slog.Any("error", err))
		return doc.DocumentID, apperr.Internal("store content of document "+doc.DocumentID, err)
	}
	return doc.DocumentID, nil
}

func (u *Usecase) storeContent(ctx context.Context, doc *document.Document, content []byte) error {
	if u.blobs == nil {
		return u.docs.UpdateContent(ctx, doc.DocumentID, content, "")
	}
	key := BlobKey(doc.ApplicationID, doc.DocumentID, doc.Filename)
	if err := u.blobs.Put(ctx, key, content, doc.ContentType); err != nil {
		return err
	}
	return u.docs.UpdateContent(ctx, doc.DocumentID, nil, key)
}
