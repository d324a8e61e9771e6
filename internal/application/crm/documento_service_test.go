package crm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type documentoFixture struct {
	svc        *DocumentoService
	documentos *MockDocumentoRepository
	propostas  *MockPropostaRepository
	storage    *MockObjectStorage
	pub        *recordingPublisher
}

func newDocumentoFixture() documentoFixture {
	f := documentoFixture{
		documentos: new(MockDocumentoRepository),
		propostas:  new(MockPropostaRepository),
		storage:    new(MockObjectStorage),
		pub:        &recordingPublisher{},
	}
	f.svc = NewDocumentoService(f.documentos, f.propostas, f.storage, f.pub, zap.NewNop())
	return f
}

func TestDocumentoService_RequestUploadThenConfirm(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	propostaID := uuid.New()
	userID := uuid.New()
	f := newDocumentoFixture()
	expires := time.Now().Add(15 * time.Minute)

	f.propostas.On("FindByID", ctx, tenantID, propostaID).Return(&crm.Proposta{}, nil)
	f.storage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "application/pdf", time.Duration(0)).
		Return("https://s3.local/upload", expires, nil)
	f.documentos.On("Save", ctx, mock.AnythingOfType("*crm.Documento")).Return(nil)

	up, err := f.svc.RequestUpload(ctx, tenantID, userID, propostaID, CreateDocumentoRequest{
		FileName: "comprovante renda.pdf", ContentType: "application/pdf", Size: 2048,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/upload", up.UploadURL)
	assert.Equal(t, "pending", up.Documento.Status)
	assert.Empty(t, f.pub.types(), "pending documentos are not announced")

	saved := f.documentos.Calls[0].Arguments.Get(1).(*crm.Documento)
	assert.True(t, strings.HasPrefix(saved.StorageKey, "tenants/"+tenantID.String()+"/propostas/"+propostaID.String()))

	t.Run("confirm fails while object is missing", func(t *testing.T) {
		f.documentos.On("FindByID", ctx, tenantID, saved.ID).Return(saved, nil)
		f.storage.On("ObjectExists", ctx, saved.StorageKey).Return(false, nil).Once()

		_, err := f.svc.Confirm(ctx, tenantID, userID, saved.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("confirm activates once uploaded", func(t *testing.T) {
		f.storage.On("ObjectExists", ctx, saved.StorageKey).Return(true, nil).Once()

		resp, err := f.svc.Confirm(ctx, tenantID, userID, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, []string{"documento.created"}, f.pub.types())
	})
}

func TestDocumentoService_RequestUpload_RejectsType(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	propostaID := uuid.New()
	f := newDocumentoFixture()
	f.propostas.On("FindByID", ctx, tenantID, propostaID).Return(&crm.Proposta{}, nil)

	_, err := f.svc.RequestUpload(ctx, tenantID, uuid.New(), propostaID, CreateDocumentoRequest{
		FileName: "script.sh", ContentType: "application/x-sh", Size: 10,
	})

	assert.True(t, errors.Is(err, &shared.DomainError{Code: shared.CodeInvalidInput, Field: "content_type"}))
	f.storage.AssertNotCalled(t, "GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentoService_Upload(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	propostaID := uuid.New()

	t.Run("stores and activates", func(t *testing.T) {
		f := newDocumentoFixture()
		f.propostas.On("FindByID", mock.Anything, tenantID, propostaID).Return(&crm.Proposta{}, nil)
		f.storage.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything, int64(5), "image/png").Return(nil)
		f.documentos.On("Save", mock.Anything, mock.AnythingOfType("*crm.Documento")).Return(nil)

		resp, err := f.svc.Upload(ctx, tenantID, uuid.New(), propostaID, "rg.png", "image/png", 5, strings.NewReader("12345"))

		require.NoError(t, err)
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, []string{"documento.created"}, f.pub.types())
	})

	t.Run("removes the object when metadata cannot be saved", func(t *testing.T) {
		f := newDocumentoFixture()
		f.propostas.On("FindByID", mock.Anything, tenantID, propostaID).Return(&crm.Proposta{}, nil)
		f.storage.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything, int64(5), "image/png").Return(nil)
		f.documentos.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))
		f.storage.On("DeleteObject", mock.Anything, mock.AnythingOfType("string")).Return(nil)

		_, err := f.svc.Upload(ctx, tenantID, uuid.New(), propostaID, "rg.png", "image/png", 5, strings.NewReader("12345"))

		require.Error(t, err)
		f.storage.AssertCalled(t, "DeleteObject", mock.Anything, mock.AnythingOfType("string"))
		assert.Empty(t, f.pub.types())
	})
}

func TestDocumentoService_DownloadAndDelete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	newDoc := func(t *testing.T, confirm bool) *crm.Documento {
		d, err := crm.NewDocumento(tenantID, uuid.New(), "contrato.pdf", "application/pdf", 100, nil)
		require.NoError(t, err)
		if confirm {
			require.NoError(t, d.Confirm())
			d.ClearDomainEvents()
		}
		return d
	}

	t.Run("download requires an active documento", func(t *testing.T) {
		f := newDocumentoFixture()
		d := newDoc(t, false)
		f.documentos.On("FindByID", ctx, tenantID, d.ID).Return(d, nil)

		_, err := f.svc.Download(ctx, tenantID, d.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("download presigns with the file name", func(t *testing.T) {
		f := newDocumentoFixture()
		d := newDoc(t, true)
		f.documentos.On("FindByID", ctx, tenantID, d.ID).Return(d, nil)
		f.storage.On("GenerateDownloadURL", ctx, d.StorageKey, "contrato.pdf", time.Duration(0)).
			Return("https://s3.local/get", time.Now(), nil)

		resp, err := f.svc.Download(ctx, tenantID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://s3.local/get", resp.URL)
		assert.Equal(t, "contrato.pdf", resp.FileName)
	})

	t.Run("delete of an active documento is announced", func(t *testing.T) {
		f := newDocumentoFixture()
		d := newDoc(t, true)
		f.documentos.On("FindByID", ctx, tenantID, d.ID).Return(d, nil)
		f.documentos.On("Delete", ctx, tenantID, d.ID).Return(nil)
		f.storage.On("DeleteObject", ctx, d.StorageKey).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, tenantID, uuid.New(), d.ID))
		assert.Equal(t, []string{"documento.deleted"}, f.pub.types())
	})

	t.Run("delete of a pending documento is silent", func(t *testing.T) {
		f := newDocumentoFixture()
		d := newDoc(t, false)
		f.documentos.On("FindByID", ctx, tenantID, d.ID).Return(d, nil)
		f.documentos.On("Delete", ctx, tenantID, d.ID).Return(nil)
		f.storage.On("DeleteObject", ctx, d.StorageKey).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, tenantID, uuid.New(), d.ID))
		assert.Empty(t, f.pub.types())
	})
}
