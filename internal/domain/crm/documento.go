package crm

import (
	"strings"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentoStatus tracks the upload lifecycle of a documento
type DocumentoStatus string

const (
	DocumentoPending DocumentoStatus = "pending"
	DocumentoActive  DocumentoStatus = "active"
)

// MaxDocumentoSize is the largest file accepted for a proposta (20 MiB)
const MaxDocumentoSize int64 = 20 << 20

var allowedDocumentoTypes = map[string]bool{
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/png":          true,
	"image/webp":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// IsAllowedContentType reports whether the content type may be uploaded
func IsAllowedContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	return allowedDocumentoTypes[ct]
}

// Documento is a file attached to a proposta (RG, comprovante de renda, ...)
type Documento struct {
	shared.TenantAggregateRoot
	PropostaID  uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	StorageKey  string
	Status      DocumentoStatus
	UploadedBy  *uuid.UUID
}

// NewDocumento creates a pending documento awaiting upload
func NewDocumento(tenantID, propostaID uuid.UUID, fileName, contentType string, size int64, uploadedBy *uuid.UUID) (*Documento, error) {
	fileName = trim(fileName)
	if err := requireID("proposta_id", "Proposta", propostaID); err != nil {
		return nil, err
	}
	if err := validateLength("file_name", "Nome do arquivo", fileName, 1, maxFileNameLength); err != nil {
		return nil, err
	}
	if !IsAllowedContentType(contentType) {
		return nil, shared.NewFieldError("content_type", "Tipo de arquivo não permitido")
	}
	if size <= 0 || size > MaxDocumentoSize {
		return nil, shared.NewFieldError("size", "Tamanho do arquivo inválido")
	}

	d := &Documento{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PropostaID:          propostaID,
		FileName:            fileName,
		ContentType:         contentType,
		Size:                size,
		Status:              DocumentoPending,
		UploadedBy:          optionalID(uploadedBy),
	}
	d.StorageKey = StorageKeyFor(tenantID, propostaID, d.ID, fileName)
	return d, nil
}

// StorageKeyFor builds the object key under which a documento is stored
func StorageKeyFor(tenantID, propostaID, documentoID uuid.UUID, fileName string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, fileName)
	return "tenants/" + tenantID.String() + "/propostas/" + propostaID.String() + "/" + documentoID.String() + "-" + safe
}

// Confirm activates the documento once the object exists in storage
func (d *Documento) Confirm() error {
	if d.Status != DocumentoPending {
		return shared.NewDomainError(shared.CodeInvalidState, "Documento já foi confirmado")
	}
	d.Status = DocumentoActive
	d.Touch()
	d.IncrementVersion()
	d.AddDomainEvent(NewRecordChangedEvent(EntityDocumento, ActionCreated, d.ID, d.TenantID, d.FileName, nil, d.Snapshot()))
	return nil
}

// MarkDeleted records the deletion event
func (d *Documento) MarkDeleted() {
	d.AddDomainEvent(NewRecordChangedEvent(EntityDocumento, ActionDeleted, d.ID, d.TenantID, d.FileName, d.Snapshot(), nil))
}

// Snapshot returns the audit representation of the documento
func (d *Documento) Snapshot() map[string]any {
	return map[string]any{
		"proposta_id":  d.PropostaID.String(),
		"file_name":    d.FileName,
		"content_type": d.ContentType,
		"size":         d.Size,
		"status":       string(d.Status),
	}
}
