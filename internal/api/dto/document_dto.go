package dto

import (
	"time"

	"github.com/spec-kit/ticket-metrics/internal/domain"
)

// DocumentResponse describes the session's stored CSV.
type DocumentResponse struct {
	FileName   string    `json:"file_name"`
	SizeBytes  int       `json:"size_bytes"`
	Digest     string    `json:"digest"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// NewDocumentResponse maps document metadata; the content is never echoed.
func NewDocumentResponse(doc *domain.Document) DocumentResponse {
	return DocumentResponse{
		FileName:   doc.FileName,
		SizeBytes:  doc.SizeBytes,
		Digest:     doc.Digest,
		UploadedAt: doc.UploadedAt,
	}
}

// UploadAckResponse is the fixed reply of the legacy upload endpoint.
type UploadAckResponse struct {
	Message  string `json:"message"`
	Received bool   `json:"received"`
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Server string `json:"server"`
	Port   string `json:"port"`
	Time   string `json:"time"`
}
