package document

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

type Type string

const (
	TypeIDProof       Type = "id_proof"
	TypeAddressProof  Type = "address_proof"
	TypeMedicalDoc    Type = "medical_doc"
	TypePayroll       Type = "payroll"
	TypeRequestedDocs Type = "requested_docs"
	TypeOther         Type = "other"
)

func ParseType(s string) Type {
	switch t := Type(s); t {
	case TypeIDProof, TypeAddressProof, TypeMedicalDoc, TypePayroll, TypeRequestedDocs:
		return t
	}
	return TypeOther
}

// Document metadata; content lives either inline or in the blob store under BlobKey.
type Document struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	DocumentID    string    `gorm:"size:32;uniqueIndex:ux_documents_document_id" json:"id"`
	ApplicationID string    `gorm:"size:32;index:idx_documents_application" json:"application_id"`
	Type          Type      `gorm:"size:32" json:"type"`
	Filename      string    `gorm:"size:255" json:"filename"`
	ContentType   string    `gorm:"size:128" json:"content_type"`
	Size          int64     `json:"size"`
	UploadedBy    string    `gorm:"size:64" json:"uploaded_by"`
	UploadedAt    time.Time `gorm:"index:idx_documents_uploaded" json:"uploaded_at"`
	BlobKey       string    `gorm:"size:255" json:"-"`
	Content       []byte    `gorm:"type:longblob" json:"-"`
}

func (Document) TableName() string { return "documents" }
