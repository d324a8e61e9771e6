package crm

import (
	"context"
	"fmt"
	"io"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentoService manages the files attached to propostas. Files live in
// object storage; the database only keeps their metadata.
type DocumentoService struct {
	documentoRepo crm.DocumentoRepository
	propostaRepo  crm.PropostaRepository
	storage       ObjectStorage
	events        eventPublisher
	logger        *zap.Logger
}

// NewDocumentoService creates a new DocumentoService
func NewDocumentoService(
	documentoRepo crm.DocumentoRepository,
	propostaRepo crm.PropostaRepository,
	storage ObjectStorage,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *DocumentoService {
	return &DocumentoService{
		documentoRepo: documentoRepo,
		propostaRepo:  propostaRepo,
		storage:       storage,
		events:        eventPublisher{publisher: publisher, logger: logger},
		logger:        logger,
	}
}

// RequestUpload registers a pending documento and returns a presigned URL the
// client uploads the file to. The documento stays pending until Confirm.
func (s *DocumentoService) RequestUpload(ctx context.Context, tenantID, userID, propostaID uuid.UUID, req CreateDocumentoRequest) (*DocumentoUploadResponse, error) {
	if _, err := s.propostaRepo.FindByID(ctx, tenantID, propostaID); err != nil {
		return nil, err
	}
	doc, err := crm.NewDocumento(tenantID, propostaID, req.FileName, req.ContentType, req.Size, actorPtr(userID))
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, doc.StorageKey, doc.ContentType, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}
	if err := s.documentoRepo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save documento: %w", err)
	}

	return &DocumentoUploadResponse{
		Documento: ToDocumentoResponse(doc),
		UploadURL: url,
		ExpiresAt: expiresAt,
	}, nil
}

// Upload streams a file through the API into storage and activates it at once
func (s *DocumentoService) Upload(
	ctx context.Context,
	tenantID, userID, propostaID uuid.UUID,
	fileName, contentType string,
	size int64,
	body io.Reader,
) (*DocumentoResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "documento", "upload")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropostaID, propostaID.String(),
		"size", size,
	)

	if _, err := s.propostaRepo.FindByID(ctx, tenantID, propostaID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	doc, err := crm.NewDocumento(tenantID, propostaID, fileName, contentType, size, actorPtr(userID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.storage.Upload(ctx, doc.StorageKey, io.LimitReader(body, crm.MaxDocumentoSize), doc.Size, doc.ContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to upload documento: %w", err)
	}
	if err := doc.Confirm(); err != nil {
		return nil, err
	}
	if err := s.documentoRepo.Save(ctx, doc); err != nil {
		telemetry.RecordError(span, err)
		s.removeObject(ctx, doc.StorageKey)
		return nil, fmt.Errorf("failed to save documento: %w", err)
	}
	s.events.publish(ctx, userID, doc)

	resp := ToDocumentoResponse(doc)
	return &resp, nil
}

// Confirm activates a pending documento once its object exists in storage
func (s *DocumentoService) Confirm(ctx context.Context, tenantID, userID, id uuid.UUID) (*DocumentoResponse, error) {
	doc, err := s.documentoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.storage.ObjectExists(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check documento object: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Arquivo ainda não foi enviado")
	}
	if err := doc.Confirm(); err != nil {
		return nil, err
	}

	if err := s.documentoRepo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save documento: %w", err)
	}
	s.events.publish(ctx, userID, doc)

	resp := ToDocumentoResponse(doc)
	return &resp, nil
}

// ListByProposta lists the active documentos of a proposta
func (s *DocumentoService) ListByProposta(ctx context.Context, tenantID, propostaID uuid.UUID) ([]DocumentoResponse, error) {
	if _, err := s.propostaRepo.FindByID(ctx, tenantID, propostaID); err != nil {
		return nil, err
	}
	docs, err := s.documentoRepo.FindActiveByProposta(ctx, tenantID, propostaID)
	if err != nil {
		return nil, err
	}
	items := make([]DocumentoResponse, len(docs))
	for i := range docs {
		items[i] = ToDocumentoResponse(&docs[i])
	}
	return items, nil
}

// Download returns a presigned URL for an active documento
func (s *DocumentoService) Download(ctx context.Context, tenantID, id uuid.UUID) (*DocumentoDownloadResponse, error) {
	doc, err := s.documentoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != crm.DocumentoActive {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Documento ainda não foi confirmado")
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey, doc.FileName, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}
	return &DocumentoDownloadResponse{URL: url, FileName: doc.FileName, ExpiresAt: expiresAt}, nil
}

// Delete removes a documento and its stored object
func (s *DocumentoService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	doc, err := s.documentoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.documentoRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.removeObject(ctx, doc.StorageKey)

	// pending uploads were never announced, so their removal is not either
	if doc.Status == crm.DocumentoActive {
		doc.MarkDeleted()
		s.events.publish(ctx, userID, doc)
	}
	return nil
}

func (s *DocumentoService) removeObject(ctx context.Context, key string) {
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to remove documento object", zap.String("key", key), zap.Error(err))
	}
}

func actorPtr(userID uuid.UUID) *uuid.UUID {
	if userID == uuid.Nil {
		return nil
	}
	return &userID
}
