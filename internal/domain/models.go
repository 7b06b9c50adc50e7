package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a client-side UUID when the caller did not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Role is the access level of a profile within its company
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleGerente  Role = "gerente"
	RoleOperador Role = "operador"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleGerente, RoleOperador:
		return true
	}
	return false
}

// Company is the tenant. Every other entity is scoped by its ID.
type Company struct {
	BaseModel
	Nome  string `gorm:"type:varchar(200);not null"`
	Plano string `gorm:"type:varchar(50);not null;default:'basico'"`
	Ativo bool   `gorm:"not null;default:true"`
}

func (Company) TableName() string {
	return "companies"
}

// Profile binds an authenticated user to exactly one company
type Profile struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nome      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'operador'"`
	Ativo     bool      `gorm:"not null;default:true"`
	Company   *Company  `gorm:"foreignKey:CompanyID"`
}

func (Profile) TableName() string {
	return "profiles"
}

// TipoDocumento identifies which Brazilian tax id a cliente carries
type TipoDocumento string

const (
	TipoDocumentoCPF  TipoDocumento = "CPF"
	TipoDocumentoCNPJ TipoDocumento = "CNPJ"
)

// Cliente is a customer of a tenant. Documento is stored digits-only.
type Cliente struct {
	BaseModel
	CompanyID     uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_clientes_company_documento;index"`
	Nome          string        `gorm:"type:varchar(200);not null;index"`
	TipoDocumento TipoDocumento `gorm:"type:varchar(4);not null"`
	Documento     string        `gorm:"type:varchar(14);not null;uniqueIndex:idx_clientes_company_documento"`
	Telefone      string        `gorm:"type:varchar(20);not null"`
	Email         string        `gorm:"type:varchar(255)"`
	CEP           string        `gorm:"column:cep;type:varchar(8)"`
	Rua           string        `gorm:"type:varchar(200)"`
	Numero        string        `gorm:"type:varchar(20)"`
	Bairro        string        `gorm:"type:varchar(100)"`
	Cidade        string        `gorm:"type:varchar(100)"`
	Estado        string        `gorm:"type:varchar(2)"`
}

func (Cliente) TableName() string {
	return "clientes"
}

// StatusConfig is one step of a tenant's configurable status flow.
// Ordem orders the non-cancellation statuses; the cancellation status is a side exit.
type StatusConfig struct {
	BaseModel
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Nome           string    `gorm:"type:varchar(100);not null"`
	Cor            string    `gorm:"type:varchar(20);not null;default:'#6b7280'"`
	Ordem          int       `gorm:"not null;default:0"`
	Ativo          bool      `gorm:"not null;default:true"`
	IsFinal        bool      `gorm:"column:is_final;not null;default:false"`
	IsCancelamento bool      `gorm:"column:is_cancelamento;not null;default:false"`
}

func (StatusConfig) TableName() string {
	return "status_config"
}

// IsTerminal reports whether orders in this status accept no further lifecycle changes
func (s *StatusConfig) IsTerminal() bool {
	return s.IsFinal || s.IsCancelamento
}

// OrdemServico is the service order aggregate root
type OrdemServico struct {
	BaseModel
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_ordens_company_numero;index"`
	NumeroOS        string          `gorm:"column:numero_os;type:varchar(30);not null;uniqueIndex:idx_ordens_company_numero"`
	ClienteID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	StatusID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendedorID      *uuid.UUID      `gorm:"type:uuid;index"`
	CriadoPor       *uuid.UUID      `gorm:"type:uuid"`
	DataAbertura    time.Time       `gorm:"not null;index"`
	DataPrevista    *time.Time      `gorm:"type:date;index"`
	DataFinalizacao *time.Time
	ValorTotal      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Observacoes     string          `gorm:"type:text"`

	Cliente    *Cliente       `gorm:"foreignKey:ClienteID"`
	Status     *StatusConfig  `gorm:"foreignKey:StatusID"`
	Itens      []OSItem       `gorm:"foreignKey:OrdemServicoID"`
	Pagamentos []Pagamento    `gorm:"foreignKey:OrdemServicoID"`
	Valores    []ValorCampoOS `gorm:"foreignKey:OrdemServicoID"`
}

func (OrdemServico) TableName() string {
	return "ordens_servico"
}

// ItemTipo distinguishes service lines from product lines
type ItemTipo string

const (
	ItemTipoServico ItemTipo = "servico"
	ItemTipoProduto ItemTipo = "produto"
)

// OSItem is a line item of an order. ValorTotal = Quantidade * ValorUnitario.
type OSItem struct {
	BaseModel
	OrdemServicoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo           ItemTipo        `gorm:"type:varchar(10);not null"`
	ReferenciaID   *uuid.UUID      `gorm:"type:uuid"`
	Descricao      string          `gorm:"type:varchar(500);not null"`
	Quantidade     decimal.Decimal `gorm:"type:numeric(12,3);not null;default:1"`
	ValorUnitario  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	ValorTotal     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
}

func (OSItem) TableName() string {
	return "os_itens"
}

// HistoricoStatus is one immutable row of an order's status ledger.
// Rows are never modified after insert.
type HistoricoStatus struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID     `gorm:"type:uuid;not null;index"`
	OrdemServicoID uuid.UUID     `gorm:"type:uuid;not null;index"`
	StatusID       uuid.UUID     `gorm:"type:uuid;not null"`
	UsuarioID      *uuid.UUID    `gorm:"type:uuid"`
	DataHora       time.Time     `gorm:"not null;index"`
	Status         *StatusConfig `gorm:"foreignKey:StatusID"`
}

func (HistoricoStatus) TableName() string {
	return "historico_status"
}

func (h *HistoricoStatus) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.DataHora.IsZero() {
		h.DataHora = time.Now().UTC()
	}
	return nil
}

// NumeracaoOS is the per-tenant order number counter.
// ProximoNumero is the number the next created order receives.
type NumeracaoOS struct {
	BaseModel
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Prefixo       string    `gorm:"type:varchar(10);not null;default:''"`
	ProximoNumero int64     `gorm:"not null;default:1"`
}

func (NumeracaoOS) TableName() string {
	return "numeracao_os"
}

// CampoTipo is the input type of a tenant-defined custom field
type CampoTipo string

const (
	CampoTipoTexto    CampoTipo = "texto"
	CampoTipoNumero   CampoTipo = "numero"
	CampoTipoData     CampoTipo = "data"
	CampoTipoSelect   CampoTipo = "select"
	CampoTipoCheckbox CampoTipo = "checkbox"
)

// IsValid reports whether t is a supported field type
func (t CampoTipo) IsValid() bool {
	switch t {
	case CampoTipoTexto, CampoTipoNumero, CampoTipoData, CampoTipoSelect, CampoTipoCheckbox:
		return true
	}
	return false
}

// StringList is a []string persisted as a JSON array
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(l))
}

// CampoOS is a tenant-defined custom field shown on every order
type CampoOS struct {
	BaseModel
	CompanyID               uuid.UUID  `gorm:"type:uuid;not null;index"`
	Nome                    string     `gorm:"type:varchar(100);not null"`
	Tipo                    CampoTipo  `gorm:"type:varchar(20);not null;default:'texto'"`
	Obrigatorio             bool       `gorm:"not null;default:false"`
	Ativo                   bool       `gorm:"not null;default:true"`
	Ordem                   int        `gorm:"not null;default:0"`
	EditavelAposFinalizacao bool       `gorm:"column:editavel_apos_finalizacao;not null;default:false"`
	Opcoes                  StringList `gorm:"type:text"`
}

func (CampoOS) TableName() string {
	return "campos_os"
}

// ValorCampoOS is the value of one custom field on one order
type ValorCampoOS struct {
	BaseModel
	OrdemServicoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_valores_ordem_campo"`
	CampoID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_valores_ordem_campo"`
	Valor          string    `gorm:"type:text"`
	Campo          *CampoOS  `gorm:"foreignKey:CampoID"`
}

func (ValorCampoOS) TableName() string {
	return "valores_campos_os"
}

// Categoria groups catalog entries
type Categoria struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nome      string    `gorm:"type:varchar(100);not null"`
	Ativo     bool      `gorm:"not null;default:true"`
}

func (Categoria) TableName() string {
	return "categorias"
}

// Servico is a catalog entry for labour
type Servico struct {
	BaseModel
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoriaID *uuid.UUID      `gorm:"type:uuid"`
	Nome        string          `gorm:"type:varchar(200);not null"`
	Descricao   string          `gorm:"type:text"`
	Preco       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Ativo       bool            `gorm:"not null;default:true"`
}

func (Servico) TableName() string {
	return "servicos"
}

// Produto is a catalog entry for material sold with an order
type Produto struct {
	BaseModel
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoriaID *uuid.UUID      `gorm:"type:uuid"`
	Nome        string          `gorm:"type:varchar(200);not null"`
	Descricao   string          `gorm:"type:text"`
	Preco       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Ativo       bool            `gorm:"not null;default:true"`
}

func (Produto) TableName() string {
	return "produtos"
}

// FormaPagamento is the payment method of a Pagamento
type FormaPagamento string

const (
	FormaPagamentoPix           FormaPagamento = "pix"
	FormaPagamentoDinheiro      FormaPagamento = "dinheiro"
	FormaPagamentoCartaoCredito FormaPagamento = "cartao_credito"
	FormaPagamentoCartaoDebito  FormaPagamento = "cartao_debito"
	FormaPagamentoBoleto        FormaPagamento = "boleto"
	FormaPagamentoTransferencia FormaPagamento = "transferencia"
)

// Pagamento is a payment received against an order
type Pagamento struct {
	BaseModel
	OrdemServicoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Forma          FormaPagamento  `gorm:"type:varchar(20);not null"`
	Valor          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Data           time.Time       `gorm:"not null"`
}

func (Pagamento) TableName() string {
	return "pagamentos"
}

// AuditAction is the kind of change an audit entry records
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionExport AuditAction = "export"
	AuditActionPrint  AuditAction = "print"
)

// AuditLog records a mutating API call
type AuditLog struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	CompanyID   *uuid.UUID  `gorm:"type:uuid;index"`
	UserID      *uuid.UUID  `gorm:"type:uuid;index"`
	UserEmail   string      `gorm:"type:varchar(255)"`
	Action      AuditAction `gorm:"type:varchar(20);not null"`
	EntityType  string      `gorm:"type:varchar(50);not null;index"`
	EntityID    *uuid.UUID  `gorm:"type:uuid"`
	Method      string      `gorm:"type:varchar(10)"`
	Path        string      `gorm:"type:varchar(500)"`
	StatusCode  int         `gorm:"not null"`
	IPAddress   string      `gorm:"type:varchar(64)"`
	UserAgent   string      `gorm:"type:varchar(500)"`
	RequestID   string      `gorm:"type:varchar(64)"`
	RequestBody string      `gorm:"type:text"`
	PerformedAt time.Time   `gorm:"not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.PerformedAt.IsZero() {
		a.PerformedAt = time.Now().UTC()
	}
	return nil
}

// AllModels lists every persisted model, in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&Company{},
		&Profile{},
		&Cliente{},
		&StatusConfig{},
		&NumeracaoOS{},
		&Categoria{},
		&Servico{},
		&Produto{},
		&CampoOS{},
		&OrdemServico{},
		&OSItem{},
		&HistoricoStatus{},
		&ValorCampoOS{},
		&Pagamento{},
		&AuditLog{},
	}
}
