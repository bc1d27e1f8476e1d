package application

import (
	"context"
	"errors"
	"log/slog"

	"underwriting-backend/internal/domain/apperr"
	domain "underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/document"
	"underwriting-backend/internal/domain/uow"
	"underwriting-backend/internal/domain/user"
	"underwriting-backend/internal/usecase/verification"
)

// VerifyDocuments extracts the most recent document of a submitted
// application and cross-checks it against the declared data. A repeat
// verification overwrites the previous result.
func (u *Usecase) VerifyDocuments(ctx context.Context, actor user.Actor, appID string) (*VerificationResult, error) {
	res := &VerificationResult{}
	a, err := u.transition(ctx, actor, domain.ActionVerifyDocuments, appID, func(r uow.Repos, a *domain.Application) (map[string]any, error) {
		doc, err := r.Documents.LatestByApplicationID(ctx, a.ApplicationID)
		if errors.Is(err, document.ErrNotFound) {
			return nil, apperr.Validation("no document found for verification")
		}
		if err != nil {
			return nil, apperr.Internal("load document", err)
		}

		ex, err := u.extractor.Extract(ctx, u.documentContent(ctx, doc), doc.Filename, doc.ContentType)
		if err != nil {
			return nil, apperr.Internal("extract document", err)
		}
		report := verification.CrossCheck(a.Data, ex)
		summary := verification.Summary(report)

		data, err := toJSONMap(map[string]any{
			"document_id":          doc.DocumentID,
			"filename":             doc.Filename,
			"extraction":           ex,
			"verification_results": report,
			"summary":              summary,
			"verified_by":          actor.ID,
			"verified_at":          u.now().UTC(),
		})
		if err != nil {
			return nil, apperr.Internal("encode verification data", err)
		}
		a.VerificationData = data

		res.Extraction, res.Report, res.Summary = ex, report, summary
		return map[string]any{
			"document_id": doc.DocumentID,
			"status":      report.Status,
			"confidence":  report.Confidence,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	res.Application = a
	return res, nil
}

// documentContent prefers inline bytes, then the blob store.
func (u *Usecase) documentContent(ctx context.Context, doc *document.Document) []byte {
	if len(doc.Content) > 0 {
		return doc.Content
	}
	if doc.BlobKey == "" || u.blobs == nil {
		return nil
	}
	b, err := u.blobs.Get(ctx, doc.BlobKey)
	if err != nil {
		u.logger.WarnContext(ctx, "document content unavailable, verifying on metadata only",
			slog.String("document_id", doc.DocumentID), slog.Any("error", err))
		return nil
	}
	return b
}
