package models

import "time"

// FileRef is an opaque reference to an uploaded file. The backend validates
// size and mime type only; contents are never fetched or inspected here.
type FileRef struct {
	URL        string    `bson:"url" json:"url"`
	FileName   string    `bson:"fileName" json:"fileName"`
	FileSize   int64     `bson:"fileSize" json:"fileSize"`
	MimeType   string    `bson:"mimeType" json:"mimeType"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// DocumentType is the kind of identity document captured.
type DocumentType string

const (
	DocumentNationalID    DocumentType = "national_id"
	DocumentPassport      DocumentType = "passport"
	DocumentDriverLicense DocumentType = "driver_license"
)

// DocumentStatus is the review state of a submitted identity document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// IdentityDocument is a captured identity document awaiting or past review.
type IdentityDocument struct {
	ID         string         `bson:"id" json:"id"`
	UserID     string         `bson:"userId" json:"userId"`
	Type       DocumentType   `bson:"type" json:"type"`
	Number     string         `bson:"number" json:"number,omitempty"`
	Country    string         `bson:"country" json:"country,omitempty"`
	Files      []FileRef      `bson:"files" json:"files"`
	Status     DocumentStatus `bson:"status" json:"status"`
	RejectNote string         `bson:"rejectNote,omitempty" json:"rejectNote,omitempty"`
	ReviewedBy string         `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time     `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt  time.Time      `bson:"updatedAt" json:"updatedAt,omitzero"`
}
