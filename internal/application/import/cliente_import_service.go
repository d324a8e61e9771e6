package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	csvimport "github.com/aprovacrm/backend/internal/infrastructure/import"
	"github.com/aprovacrm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxReportedErrors = 100

// Column names of the cliente CSV. Matching ignores case and accents.
const (
	ColumnNome     = "nome"
	ColumnCPF      = "cpf"
	ColumnEmail    = "email"
	ColumnTelefone = "telefone"
	ColumnEndereco = "endereco"
)

// ClienteImportResult reports what happened to every row of the file
type ClienteImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// ClienteImportService imports clientes from CSV files
type ClienteImportService struct {
	clienteRepo crm.ClienteRepository
	publisher   shared.EventPublisher
	maxRows     int
	logger      *zap.Logger
}

// NewClienteImportService creates a new ClienteImportService. maxRows of zero means no limit.
func NewClienteImportService(
	clienteRepo crm.ClienteRepository,
	publisher shared.EventPublisher,
	maxRows int,
	logger *zap.Logger,
) *ClienteImportService {
	return &ClienteImportService{
		clienteRepo: clienteRepo,
		publisher:   publisher,
		maxRows:     maxRows,
		logger:      logger,
	}
}

// Import reads the CSV and creates one cliente per valid row. A CPF that
// already exists, in the tenant or earlier in the file, skips the row.
// Invalid rows are reported and do not stop the import.
func (s *ClienteImportService) Import(ctx context.Context, tenantID, userID uuid.UUID, r io.Reader) (*ClienteImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cliente", "import",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID),
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID),
	)
	defer span.End()

	result, err := s.importFile(ctx, tenantID, userID, r)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRows, result.TotalRows,
		"imported", result.ImportedRows,
		"skipped", result.SkippedRows,
		"errors", result.ErrorRows,
	)
	return result, nil
}

func (s *ClienteImportService) importFile(ctx context.Context, tenantID, userID uuid.UUID, r io.Reader) (*ClienteImportResult, error) {
	parser, err := csvimport.NewCSVParser(r, csvimport.WithMaxRows(s.maxRows))
	if err != nil {
		return nil, fileError(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, fileError(err)
	}
	if missing := parser.MissingHeaders(ColumnNome, ColumnCPF); len(missing) > 0 {
		return nil, shared.NewFieldError("file", fmt.Sprintf("Colunas obrigatórias ausentes: %v", missing))
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, fileError(err)
	}
	telemetry.AddEvent(trace.SpanFromContext(ctx), "csv.parsed", telemetry.SpanAttrRows, len(rows))

	result := &ClienteImportResult{TotalRows: len(rows)}
	rowErrors := csvimport.NewErrorCollection(maxReportedErrors)
	seen := make(map[string]int, len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.importRow(ctx, tenantID, userID, row, seen, result, rowErrors); err != nil {
			return nil, err
		}
	}

	result.Errors = rowErrors.Errors()
	result.IsTruncated = rowErrors.IsTruncated()
	result.TotalErrors = rowErrors.TotalCount()

	s.logger.Info("Clientes imported",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("total", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", result.ErrorRows))
	return result, nil
}

// importRow returns an error only for failures that must abort the import
func (s *ClienteImportService) importRow(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	row *csvimport.Row,
	seen map[string]int,
	result *ClienteImportResult,
	rowErrors *csvimport.ErrorCollection,
) error {
	cliente, err := crm.NewCliente(tenantID, crm.ClienteInput{
		Nome:     row.Get(ColumnNome),
		CPF:      row.Get(ColumnCPF),
		Email:    row.Get(ColumnEmail),
		Telefone: row.Get(ColumnTelefone),
		Endereco: row.Get(ColumnEndereco),
	})
	if err != nil {
		rowErrors.Add(validationRowError(row, err))
		result.ErrorRows++
		return nil
	}

	if first, dup := seen[cliente.CPF]; dup {
		s.logger.Debug("Duplicate CPF in file",
			zap.Int("row", row.LineNumber),
			zap.Int("first_row", first))
		result.SkippedRows++
		return nil
	}
	seen[cliente.CPF] = row.LineNumber

	exists, err := s.clienteRepo.ExistsByCPF(ctx, tenantID, cliente.CPF, uuid.Nil)
	if err != nil {
		return fmt.Errorf("failed to check cpf: %w", err)
	}
	if exists {
		result.SkippedRows++
		return nil
	}

	if userID != uuid.Nil {
		cliente.SetCreatedBy(userID)
	}
	if err := s.clienteRepo.Save(ctx, cliente); err != nil {
		return fmt.Errorf("failed to save cliente from row %d: %w", row.LineNumber, err)
	}
	result.ImportedRows++
	s.publish(ctx, userID, cliente)
	return nil
}

func (s *ClienteImportService) publish(ctx context.Context, userID uuid.UUID, cliente *crm.Cliente) {
	events := cliente.GetDomainEvents()
	cliente.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	for _, e := range events {
		if aware, ok := e.(shared.ActorAware); ok {
			aware.SetActor(userID)
		}
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events", zap.Error(err))
	}
}

func validationRowError(row *csvimport.Row, err error) csvimport.RowError {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		value := ""
		if domainErr.Field != "" {
			value = row.Get(domainErr.Field)
		}
		code := csvimport.ErrCodeImportValidation
		if value == "" && domainErr.Field != "" {
			code = csvimport.ErrCodeImportRequiredField
		}
		return csvimport.NewRowErrorWithValue(row.LineNumber, domainErr.Field, code, domainErr.Message, value)
	}
	return csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error())
}

func fileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile):
		return shared.NewFieldError("file", "Arquivo vazio")
	case errors.Is(err, csvimport.ErrInvalidEncoding):
		return shared.NewFieldError("file", "O arquivo deve estar em UTF-8")
	case errors.Is(err, csvimport.ErrMissingHeader):
		return shared.NewFieldError("file", "Cabeçalho ausente")
	case errors.Is(err, csvimport.ErrTooManyRows):
		return shared.NewFieldError("file", "O arquivo excede o número máximo de linhas")
	default:
		return shared.NewFieldError("file", "Arquivo CSV inválido")
	}
}
