package crm

import (
	"strings"
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter holds the common list query parameters
type ListFilter struct {
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1"`
	OrderBy  string `form:"order_by" binding:"max=50"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (f ListFilter) toDomain(filters map[string]interface{}) shared.Filter {
	if filters == nil {
		filters = map[string]interface{}{}
	}
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: strings.ToLower(f.OrderDir),
		Search:   strings.TrimSpace(f.Search),
		Filters:  filters,
	}.Normalize(shared.DefaultPageSize, shared.MaxPageSize)
}

// ========== Cliente ==========

// ClienteRequest is the create/update body of a cliente
type ClienteRequest struct {
	Nome     string `json:"nome" binding:"required,min=3,max=200"`
	CPF      string `json:"cpf" binding:"required,cpf"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Telefone string `json:"telefone" binding:"omitempty,max=30"`
	Endereco string `json:"endereco" binding:"omitempty,max=500"`
}

func (r ClienteRequest) toInput() crm.ClienteInput {
	return crm.ClienteInput{
		Nome:     r.Nome,
		CPF:      r.CPF,
		Email:    r.Email,
		Telefone: r.Telefone,
		Endereco: r.Endereco,
	}
}

// ClienteResponse represents a cliente in API responses
type ClienteResponse struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	CPF          string    `json:"cpf"`
	CPFFormatado string    `json:"cpf_formatado"`
	Email        string    `json:"email"`
	Telefone     string    `json:"telefone"`
	Endereco     string    `json:"endereco"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

// ToClienteResponse converts a domain Cliente to ClienteResponse
func ToClienteResponse(c *crm.Cliente) ClienteResponse {
	return ClienteResponse{
		ID:           c.ID,
		Nome:         c.Nome,
		CPF:          c.CPF,
		CPFFormatado: c.CPFFormatted(),
		Email:        c.Email,
		Telefone:     c.Telefone,
		Endereco:     c.Endereco,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Version:      c.GetVersion(),
	}
}

// ========== Banco ==========

// BancoListFilter narrows the banco list
type BancoListFilter struct {
	ListFilter
	Ativo *bool `form:"ativo"`
}

// BancoRequest is the create/update body of a banco
type BancoRequest struct {
	Nome     string `json:"nome" binding:"required,min=1,max=100"`
	CNPJ     string `json:"cnpj" binding:"omitempty,cnpj"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Telefone string `json:"telefone" binding:"omitempty,max=30"`
	// Ativo is only honoured on update
	Ativo *bool `json:"ativo"`
}

func (r BancoRequest) toInput() crm.BancoInput {
	return crm.BancoInput{Nome: r.Nome, CNPJ: r.CNPJ, Email: r.Email, Telefone: r.Telefone}
}

// BancoResponse represents a banco in API responses
type BancoResponse struct {
	ID        uuid.UUID `json:"id"`
	Nome      string    `json:"nome"`
	CNPJ      string    `json:"cnpj"`
	Email     string    `json:"email"`
	Telefone  string    `json:"telefone"`
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToBancoResponse converts a domain Banco to BancoResponse
func ToBancoResponse(b *crm.Banco) BancoResponse {
	return BancoResponse{
		ID:        b.ID,
		Nome:      b.Nome,
		CNPJ:      b.CNPJ,
		Email:     b.Email,
		Telefone:  b.Telefone,
		Ativo:     b.Ativo,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Version:   b.GetVersion(),
	}
}

// BancoDeleteResponse tells the client whether the banco was removed or only deactivated
type BancoDeleteResponse struct {
	ID      uuid.UUID              `json:"id"`
	Outcome crm.BancoDeleteOutcome `json:"outcome"`
}

// ========== Produto ==========

// ProdutoListFilter narrows the produto list
type ProdutoListFilter struct {
	ListFilter
	Status      string `form:"status" binding:"omitempty,oneof=ativo inativo"`
	BancoID     string `form:"banco_id" binding:"omitempty,uuid"`
	TipoCredito string `form:"tipo_credito" binding:"max=100"`
}

// ProdutoRequest is the create/update body of a produto
type ProdutoRequest struct {
	Nome        string     `json:"nome" binding:"required,min=1,max=100"`
	TipoCredito string     `json:"tipo_credito" binding:"required,max=100"`
	TaxaJuros   *string    `json:"taxa_juros" binding:"omitempty,decimal_range=0:100"`
	Status      string     `json:"status" binding:"omitempty,oneof=ativo inativo"`
	BancoID     *uuid.UUID `json:"banco_id"`
}

func (r ProdutoRequest) toInput() (crm.ProdutoInput, error) {
	taxa, err := parseOptionalDecimal("taxa_juros", r.TaxaJuros)
	if err != nil {
		return crm.ProdutoInput{}, err
	}
	return crm.ProdutoInput{
		Nome:        r.Nome,
		TipoCredito: r.TipoCredito,
		TaxaJuros:   taxa,
		Status:      crm.ProdutoStatus(r.Status),
		BancoID:     r.BancoID,
	}, nil
}

// ProdutoResponse represents a produto in API responses
type ProdutoResponse struct {
	ID          uuid.UUID        `json:"id"`
	Nome        string           `json:"nome"`
	TipoCredito string           `json:"tipo_credito"`
	TaxaJuros   *decimal.Decimal `json:"taxa_juros"`
	Status      string           `json:"status"`
	BancoID     *uuid.UUID       `json:"banco_id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Version     int              `json:"version"`
}

// ToProdutoResponse converts a domain Produto to ProdutoResponse
func ToProdutoResponse(p *crm.Produto) ProdutoResponse {
	return ProdutoResponse{
		ID:          p.ID,
		Nome:        p.Nome,
		TipoCredito: p.TipoCredito,
		TaxaJuros:   p.TaxaJuros,
		Status:      string(p.Status),
		BancoID:     p.BancoID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.GetVersion(),
	}
}

// ========== Promotora ==========

// PromotoraListFilter narrows the promotora list
type PromotoraListFilter struct {
	ListFilter
	BancoID string `form:"banco_id" binding:"omitempty,uuid"`
}

// PromotoraRequest is the create/update body of a promotora
type PromotoraRequest struct {
	Nome           string    `json:"nome" binding:"required,min=1,max=100"`
	BancoID        uuid.UUID `json:"banco_id" binding:"required"`
	CNPJ           string    `json:"cnpj" binding:"omitempty,cnpj"`
	Email          string    `json:"email" binding:"required,email,max=255"`
	Telefone       string    `json:"telefone" binding:"omitempty,max=30"`
	Contato        string    `json:"contato" binding:"omitempty,max=100"`
	ComissaoPadrao *string   `json:"comissao_padrao" binding:"omitempty,decimal_range=0:100"`
}

func (r PromotoraRequest) toInput() (crm.PromotoraInput, error) {
	comissao, err := parseOptionalDecimal("comissao_padrao", r.ComissaoPadrao)
	if err != nil {
		return crm.PromotoraInput{}, err
	}
	return crm.PromotoraInput{
		Nome:           r.Nome,
		BancoID:        r.BancoID,
		CNPJ:           r.CNPJ,
		Email:          r.Email,
		Telefone:       r.Telefone,
		Contato:        r.Contato,
		ComissaoPadrao: comissao,
	}, nil
}

// PromotoraResponse represents a promotora in API responses
type PromotoraResponse struct {
	ID             uuid.UUID        `json:"id"`
	Nome           string           `json:"nome"`
	BancoID        uuid.UUID        `json:"banco_id"`
	CNPJ           string           `json:"cnpj"`
	Email          string           `json:"email"`
	Telefone       string           `json:"telefone"`
	Contato        string           `json:"contato"`
	ComissaoPadrao *decimal.Decimal `json:"comissao_padrao"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Version        int              `json:"version"`
}

// ToPromotoraResponse converts a domain Promotora to PromotoraResponse
func ToPromotoraResponse(p *crm.Promotora) PromotoraResponse {
	return PromotoraResponse{
		ID:             p.ID,
		Nome:           p.Nome,
		BancoID:        p.BancoID,
		CNPJ:           p.CNPJ,
		Email:          p.Email,
		Telefone:       p.Telefone,
		Contato:        p.Contato,
		ComissaoPadrao: p.ComissaoPadrao,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.GetVersion(),
	}
}

// ========== Proposta ==========

// PropostaListFilter narrows the proposta list
type PropostaListFilter struct {
	ListFilter
	Status    string `form:"status" binding:"omitempty,oneof=rascunho em_analise aprovada reprovada cancelada"`
	ClienteID string `form:"cliente_id" binding:"omitempty,uuid"`
	BancoID   string `form:"banco_id" binding:"omitempty,uuid"`
	ProdutoID string `form:"produto_id" binding:"omitempty,uuid"`
}

// PropostaRequest is the create/update body of a proposta
type PropostaRequest struct {
	ClienteID   uuid.UUID  `json:"cliente_id" binding:"required"`
	BancoID     *uuid.UUID `json:"banco_id"`
	ProdutoID   *uuid.UUID `json:"produto_id"`
	Valor       string     `json:"valor" binding:"required,decimal_range=0.01:999999999999.99"`
	Finalidade  string     `json:"finalidade" binding:"omitempty,max=200"`
	Observacoes string     `json:"observacoes" binding:"omitempty,max=500"`
	Status      string     `json:"status" binding:"omitempty,oneof=rascunho em_analise aprovada reprovada cancelada"`
}

func (r PropostaRequest) toInput() (crm.PropostaInput, error) {
	valor, err := parseDecimal("valor", r.Valor)
	if err != nil {
		return crm.PropostaInput{}, err
	}
	return crm.PropostaInput{
		ClienteID:   r.ClienteID,
		BancoID:     r.BancoID,
		ProdutoID:   r.ProdutoID,
		Valor:       valor,
		Finalidade:  r.Finalidade,
		Observacoes: r.Observacoes,
		Status:      crm.PropostaStatus(r.Status),
	}, nil
}

// ChangeStatusRequest moves a proposta to another pipeline status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=rascunho em_analise aprovada reprovada cancelada"`
}

// PropostaResponse represents a proposta in API responses
type PropostaResponse struct {
	ID          uuid.UUID       `json:"id"`
	ClienteID   uuid.UUID       `json:"cliente_id"`
	BancoID     *uuid.UUID      `json:"banco_id"`
	ProdutoID   *uuid.UUID      `json:"produto_id"`
	Valor       decimal.Decimal `json:"valor"`
	Finalidade  string          `json:"finalidade"`
	Observacoes string          `json:"observacoes"`
	Status      string          `json:"status"`
	DataDecisao *time.Time      `json:"data_decisao"`
	CreatedBy   *uuid.UUID      `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToPropostaResponse converts a domain Proposta to PropostaResponse
func ToPropostaResponse(p *crm.Proposta) PropostaResponse {
	return PropostaResponse{
		ID:          p.ID,
		ClienteID:   p.ClienteID,
		BancoID:     p.BancoID,
		ProdutoID:   p.ProdutoID,
		Valor:       p.Valor,
		Finalidade:  p.Finalidade,
		Observacoes: p.Observacoes,
		Status:      string(p.Status),
		DataDecisao: p.DataDecisao,
		CreatedBy:   p.GetCreatedBy(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.GetVersion(),
	}
}

// PropostaOptions fills the selects of the proposta form
type PropostaOptions struct {
	Clientes []crm.ClienteOption `json:"clientes"`
	Bancos   []crm.Option        `json:"bancos"`
	Produtos []crm.ProdutoOption `json:"produtos"`
}

// ========== Comissao ==========

// ComissaoRequest is the create/update body of a comissao
type ComissaoRequest struct {
	ValorComissao      string  `json:"valor_comissao" binding:"required,decimal_range=0.01:999999999999.99"`
	PercentualComissao *string `json:"percentual_comissao" binding:"omitempty,decimal_range=0:100"`
	DataPrevisao       *string `json:"data_previsao" binding:"omitempty,datetime=2006-01-02"`
	Observacao         string  `json:"observacao" binding:"omitempty,max=500"`
}

func (r ComissaoRequest) toInput() (crm.ComissaoInput, error) {
	valor, err := parseDecimal("valor_comissao", r.ValorComissao)
	if err != nil {
		return crm.ComissaoInput{}, err
	}
	percentual, err := parseOptionalDecimal("percentual_comissao", r.PercentualComissao)
	if err != nil {
		return crm.ComissaoInput{}, err
	}
	previsao, err := parseOptionalDate("data_previsao", r.DataPrevisao)
	if err != nil {
		return crm.ComissaoInput{}, err
	}
	return crm.ComissaoInput{
		ValorComissao:      valor,
		PercentualComissao: percentual,
		DataPrevisao:       previsao,
		Observacao:         r.Observacao,
	}, nil
}

// MarcarPagoRequest records the payout of a comissao. The date defaults to today.
type MarcarPagoRequest struct {
	DataRecebimento *string `json:"data_recebimento" binding:"omitempty,datetime=2006-01-02"`
}

// ComissaoResponse represents a comissao in API responses
type ComissaoResponse struct {
	ID                 uuid.UUID        `json:"id"`
	PropostaID         uuid.UUID        `json:"proposta_id"`
	ValorComissao      decimal.Decimal  `json:"valor_comissao"`
	PercentualComissao *decimal.Decimal `json:"percentual_comissao"`
	DataPrevisao       *string          `json:"data_previsao"`
	DataRecebimento    *string          `json:"data_recebimento"`
	StatusRecebimento  string           `json:"status_recebimento"`
	Observacao         string           `json:"observacao"`
	UsuarioID          *uuid.UUID       `json:"usuario_id"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ToComissaoResponse converts a domain Comissao to ComissaoResponse
func ToComissaoResponse(c *crm.Comissao) ComissaoResponse {
	return ComissaoResponse{
		ID:                 c.ID,
		PropostaID:         c.PropostaID,
		ValorComissao:      c.ValorComissao,
		PercentualComissao: c.PercentualComissao,
		DataPrevisao:       formatDate(c.DataPrevisao),
		DataRecebimento:    formatDate(c.DataRecebimento),
		StatusRecebimento:  string(c.StatusRecebimento),
		Observacao:         c.Observacao,
		UsuarioID:          c.UsuarioID,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// ========== Documento ==========

// CreateDocumentoRequest announces a file about to be uploaded directly to storage
type CreateDocumentoRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

// DocumentoResponse represents a documento in API responses
type DocumentoResponse struct {
	ID          uuid.UUID  `json:"id"`
	PropostaID  uuid.UUID  `json:"proposta_id"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	Status      string     `json:"status"`
	UploadedBy  *uuid.UUID `json:"uploaded_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToDocumentoResponse converts a domain Documento to DocumentoResponse
func ToDocumentoResponse(d *crm.Documento) DocumentoResponse {
	return DocumentoResponse{
		ID:          d.ID,
		PropostaID:  d.PropostaID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		Status:      string(d.Status),
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
	}
}

// DocumentoUploadResponse carries the presigned URL the client must PUT the file to
type DocumentoUploadResponse struct {
	Documento DocumentoResponse `json:"documento"`
	UploadURL string            `json:"upload_url"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// DocumentoDownloadResponse carries a presigned download URL
type DocumentoDownloadResponse struct {
	URL       string    `json:"url"`
	FileName  string    `json:"file_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ========== helpers ==========

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, shared.NewFieldError(field, "Valor numérico inválido")
	}
	return d, nil
}

func parseOptionalDecimal(field string, value *string) (*decimal.Decimal, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := parseDecimal(field, *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(*value))
	if err != nil {
		return nil, shared.NewFieldError(field, "Data inválida, use AAAA-MM-DD")
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
