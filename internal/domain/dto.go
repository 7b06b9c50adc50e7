package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Response DTOs

type CompanyDTO struct {
	ID    uuid.UUID `json:"id"`
	Nome  string    `json:"nome"`
	Plano string    `json:"plano"`
	Ativo bool      `json:"ativo"`
}

type ProfileDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	CompanyID uuid.UUID `json:"companyId"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileSummaryDTO is the joined view of a user on an order
type ProfileSummaryDTO struct {
	UserID uuid.UUID `json:"userId"`
	Nome   string    `json:"nome"`
}

type MeDTO struct {
	Profile ProfileDTO `json:"profile"`
	Company CompanyDTO `json:"company"`
}

type ClienteDTO struct {
	ID                 uuid.UUID     `json:"id"`
	Nome               string        `json:"nome"`
	TipoDocumento      TipoDocumento `json:"tipoDocumento"`
	Documento          string        `json:"documento"`
	DocumentoFormatado string        `json:"documentoFormatado"`
	Telefone           string        `json:"telefone"`
	TelefoneFormatado  string        `json:"telefoneFormatado"`
	Email              string        `json:"email,omitempty"`
	CEP                string        `json:"cep,omitempty"`
	Rua                string        `json:"rua,omitempty"`
	Numero             string        `json:"numero,omitempty"`
	Bairro             string        `json:"bairro,omitempty"`
	Cidade             string        `json:"cidade,omitempty"`
	Estado             string        `json:"estado,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

type ClienteWithOrdensDTO struct {
	ClienteDTO
	Ordens []OrdemDTO `json:"ordens"`
}

type StatusConfigDTO struct {
	ID             uuid.UUID `json:"id"`
	Nome           string    `json:"nome"`
	Cor            string    `json:"cor"`
	Ordem          int       `json:"ordem"`
	Ativo          bool      `json:"ativo"`
	IsFinal        bool      `json:"isFinal"`
	IsCancelamento bool      `json:"isCancelamento"`
}

type CampoOSDTO struct {
	ID                      uuid.UUID `json:"id"`
	Nome                    string    `json:"nome"`
	Tipo                    CampoTipo `json:"tipo"`
	Obrigatorio             bool      `json:"obrigatorio"`
	Ativo                   bool      `json:"ativo"`
	Ordem                   int       `json:"ordem"`
	EditavelAposFinalizacao bool      `json:"editavelAposFinalizacao"`
	Opcoes                  []string  `json:"opcoes"`
}

type CategoriaDTO struct {
	ID    uuid.UUID `json:"id"`
	Nome  string    `json:"nome"`
	Ativo bool      `json:"ativo"`
}

// CatalogItemDTO is the shared view of Servico and Produto
type CatalogItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	CategoriaID *uuid.UUID      `json:"categoriaId,omitempty"`
	Nome        string          `json:"nome"`
	Descricao   string          `json:"descricao,omitempty"`
	Preco       decimal.Decimal `json:"preco"`
	Ativo       bool            `json:"ativo"`
}

type NumeracaoDTO struct {
	Prefixo       string `json:"prefixo"`
	ProximoNumero int64  `json:"proximoNumero"`
	Exemplo       string `json:"exemplo"`
}

type OrdemDTO struct {
	ID              uuid.UUID          `json:"id"`
	NumeroOS        string             `json:"numeroOs"`
	ClienteID       uuid.UUID          `json:"clienteId"`
	StatusID        uuid.UUID          `json:"statusId"`
	VendedorID      *uuid.UUID         `json:"vendedorId,omitempty"`
	CriadoPor       *uuid.UUID         `json:"criadoPor,omitempty"`
	DataAbertura    time.Time          `json:"dataAbertura"`
	DataPrevista    *string            `json:"dataPrevista,omitempty"`
	DataFinalizacao *time.Time         `json:"dataFinalizacao,omitempty"`
	ValorTotal      decimal.Decimal    `json:"valorTotal"`
	ValorPago       decimal.Decimal    `json:"valorPago"`
	Saldo           decimal.Decimal    `json:"saldo"`
	Observacoes     string             `json:"observacoes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	Cliente         *ClienteDTO        `json:"cliente,omitempty"`
	Status          *StatusConfigDTO   `json:"status,omitempty"`
	Criador         *ProfileSummaryDTO `json:"criador,omitempty"`
	Vendedor        *ProfileSummaryDTO `json:"vendedor,omitempty"`
}

type OSItemDTO struct {
	ID            uuid.UUID       `json:"id"`
	Tipo          ItemTipo        `json:"tipo"`
	ReferenciaID  *uuid.UUID      `json:"referenciaId,omitempty"`
	Descricao     string          `json:"descricao"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valorUnitario"`
	ValorTotal    decimal.Decimal `json:"valorTotal"`
}

type ValorCampoDTO struct {
	CampoID  uuid.UUID `json:"campoId"`
	Nome     string    `json:"nome"`
	Tipo     CampoTipo `json:"tipo"`
	Valor    string    `json:"valor"`
	Editavel bool      `json:"editavel"`
}

type PagamentoDTO struct {
	ID    uuid.UUID       `json:"id"`
	Forma FormaPagamento  `json:"forma"`
	Valor decimal.Decimal `json:"valor"`
	Data  time.Time       `json:"data"`
}

type HistoricoStatusDTO struct {
	ID          uuid.UUID  `json:"id"`
	StatusID    uuid.UUID  `json:"statusId"`
	StatusNome  string     `json:"statusNome"`
	StatusCor   string     `json:"statusCor"`
	UsuarioID   *uuid.UUID `json:"usuarioId,omitempty"`
	UsuarioNome string     `json:"usuarioNome,omitempty"`
	DataHora    time.Time  `json:"dataHora"`
}

type OrdemDetalheDTO struct {
	OrdemDTO
	Itens         []OSItemDTO          `json:"itens"`
	Campos        []ValorCampoDTO      `json:"campos"`
	Pagamentos    []PagamentoDTO       `json:"pagamentos"`
	Historico     []HistoricoStatusDTO `json:"historico"`
	CanAdvance    bool                 `json:"canAdvance"`
	CanCancel     bool                 `json:"canCancel"`
	ProximoStatus *StatusConfigDTO     `json:"proximoStatus,omitempty"`
}

type StatusCountDTO struct {
	StatusID uuid.UUID `json:"statusId"`
	Nome     string    `json:"nome"`
	Cor      string    `json:"cor"`
	Total    int       `json:"total"`
}

type DashboardDTO struct {
	Data            string           `json:"data"`
	OSDoDia         int              `json:"osDoDia"`
	EmProducao      int              `json:"emProducao"`
	FinalizadasHoje int              `json:"finalizadasHoje"`
	Atrasadas       int              `json:"atrasadas"`
	FaturamentoHoje decimal.Decimal  `json:"faturamentoHoje"`
	PorStatus       []StatusCountDTO `json:"porStatus"`
	Recentes        []OrdemDTO       `json:"recentes"`
}

type AgendaDTO struct {
	Data   string     `json:"data"`
	Ordens []OrdemDTO `json:"ordens"`
}

type ReportDTO struct {
	Inicio  *string       `json:"inicio,omitempty"`
	Fim     *string       `json:"fim,omitempty"`
	Summary ReportSummary `json:"summary"`
	Ordens  []OrdemDTO    `json:"ordens"`
}

type AuditLogDTO struct {
	ID          uuid.UUID   `json:"id"`
	UserID      *uuid.UUID  `json:"userId,omitempty"`
	UserEmail   string      `json:"userEmail,omitempty"`
	Action      AuditAction `json:"action"`
	EntityType  string      `json:"entityType"`
	EntityID    *uuid.UUID  `json:"entityId,omitempty"`
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	StatusCode  int         `json:"statusCode"`
	PerformedAt time.Time   `json:"performedAt"`
}

// Request DTOs

type CreateClienteRequest struct {
	Nome          string        `json:"nome" validate:"required,max=200"`
	TipoDocumento TipoDocumento `json:"tipoDocumento" validate:"required,oneof=CPF CNPJ"`
	Documento     string        `json:"documento" validate:"required,documento"`
	Telefone      string        `json:"telefone" validate:"required,min=10,max=20"`
	Email         string        `json:"email,omitempty" validate:"omitempty,email,max=255"`
	CEP           string        `json:"cep,omitempty" validate:"max=9"`
	Rua           string        `json:"rua,omitempty" validate:"max=200"`
	Numero        string        `json:"numero,omitempty" validate:"max=20"`
	Bairro        string        `json:"bairro,omitempty" validate:"max=100"`
	Cidade        string        `json:"cidade,omitempty" validate:"max=100"`
	Estado        string        `json:"estado,omitempty" validate:"omitempty,len=2"`
}

type UpdateClienteRequest = CreateClienteRequest

type CreateStatusRequest struct {
	Nome           string `json:"nome" validate:"required,max=100"`
	Cor            string `json:"cor" validate:"required,hexcolor"`
	IsFinal        bool   `json:"isFinal"`
	IsCancelamento bool   `json:"isCancelamento"`
}

type UpdateStatusRequest struct {
	Nome           string `json:"nome" validate:"required,max=100"`
	Cor            string `json:"cor" validate:"required,hexcolor"`
	Ordem          *int   `json:"ordem,omitempty" validate:"omitempty,gte=0"`
	IsFinal        bool   `json:"isFinal"`
	IsCancelamento bool   `json:"isCancelamento"`
}

type ReorderStatusesRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

type CreateCampoRequest struct {
	Nome                    string    `json:"nome" validate:"required,max=100"`
	Tipo                    CampoTipo `json:"tipo" validate:"required,oneof=texto numero data select checkbox"`
	Obrigatorio             bool      `json:"obrigatorio"`
	EditavelAposFinalizacao bool      `json:"editavelAposFinalizacao"`
	Opcoes                  []string  `json:"opcoes,omitempty" validate:"omitempty,dive,required,max=100"`
	// OpcoesTexto accepts the options as one comma-separated string
	OpcoesTexto string `json:"opcoesTexto,omitempty" validate:"max=2000"`
}

type UpdateCampoRequest = CreateCampoRequest

type CategoriaRequest struct {
	Nome string `json:"nome" validate:"required,max=100"`
}

type CatalogItemRequest struct {
	CategoriaID *uuid.UUID      `json:"categoriaId,omitempty"`
	Nome        string          `json:"nome" validate:"required,max=200"`
	Descricao   string          `json:"descricao,omitempty" validate:"max=2000"`
	Preco       decimal.Decimal `json:"preco"`
}

type UpdateNumeracaoRequest struct {
	Prefixo       string `json:"prefixo" validate:"max=10"`
	ProximoNumero int64  `json:"proximoNumero" validate:"gte=1"`
}

type OSItemRequest struct {
	Tipo         ItemTipo        `json:"tipo" validate:"required,oneof=servico produto"`
	ReferenciaID *uuid.UUID      `json:"referenciaId,omitempty"`
	Descricao    string          `json:"descricao,omitempty" validate:"max=500"`
	Quantidade   decimal.Decimal `json:"quantidade"`
	// ValorUnitario defaults to the catalog price when ReferenciaID is set
	ValorUnitario *decimal.Decimal `json:"valorUnitario,omitempty"`
}

type ValorCampoRequest struct {
	CampoID uuid.UUID `json:"campoId" validate:"required"`
	Valor   string    `json:"valor" validate:"max=2000"`
}

type PagamentoRequest struct {
	Forma FormaPagamento  `json:"forma" validate:"required,oneof=pix dinheiro cartao_credito cartao_debito boleto transferencia"`
	Valor decimal.Decimal `json:"valor"`
	Data  string          `json:"data,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type CreateOrdemRequest struct {
	ClienteID    uuid.UUID           `json:"clienteId" validate:"required"`
	VendedorID   *uuid.UUID          `json:"vendedorId,omitempty"`
	DataPrevista string              `json:"dataPrevista" validate:"required,datetime=2006-01-02"`
	Observacoes  string              `json:"observacoes,omitempty" validate:"max=2000"`
	Itens        []OSItemRequest     `json:"itens" validate:"dive"`
	Campos       []ValorCampoRequest `json:"campos" validate:"dive"`
	Pagamentos   []PagamentoRequest  `json:"pagamentos" validate:"dive"`
}

type UpdateOrdemRequest struct {
	VendedorID   *uuid.UUID          `json:"vendedorId,omitempty"`
	DataPrevista *string             `json:"dataPrevista,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Observacoes  *string             `json:"observacoes,omitempty" validate:"omitempty,max=2000"`
	Campos       []ValorCampoRequest `json:"campos,omitempty" validate:"dive"`
}

type AdvanceStatusRequest struct {
	StatusID uuid.UUID `json:"statusId" validate:"required"`
}

type UpdateProfileRequest struct {
	Role  *Role `json:"role,omitempty" validate:"omitempty,oneof=admin gerente operador"`
	Ativo *bool `json:"ativo,omitempty"`
}
