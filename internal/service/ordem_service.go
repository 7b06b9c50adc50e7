package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/mapper"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrdemRepositories groups the stores OrdemService writes through
type OrdemRepositories struct {
	Ordens     *repository.OrdemServicoRepository
	Itens      *repository.OSItemRepository
	Historico  *repository.HistoricoStatusRepository
	Status     *repository.StatusConfigRepository
	Clientes   *repository.ClienteRepository
	Campos     *repository.CampoOSRepository
	Pagamentos *repository.PagamentoRepository
	Profiles   *repository.ProfileRepository
	Numeracao  *repository.NumeracaoRepository
	Servicos   *repository.CatalogRepository[domain.Servico]
	Produtos   *repository.CatalogRepository[domain.Produto]
}

// NewOrdemRepositories builds every repository OrdemService needs on db
func NewOrdemRepositories(db *gorm.DB) OrdemRepositories {
	return OrdemRepositories{
		Ordens:     repository.NewOrdemServicoRepository(db),
		Itens:      repository.NewOSItemRepository(db),
		Historico:  repository.NewHistoricoStatusRepository(db),
		Status:     repository.NewStatusConfigRepository(db),
		Clientes:   repository.NewClienteRepository(db),
		Campos:     repository.NewCampoOSRepository(db),
		Pagamentos: repository.NewPagamentoRepository(db),
		Profiles:   repository.NewProfileRepository(db),
		Numeracao:  repository.NewNumeracaoRepository(db),
		Servicos:   repository.NewCatalogRepository[domain.Servico](db),
		Produtos:   repository.NewCatalogRepository[domain.Produto](db),
	}
}

// OrdemService owns the service-order aggregate: creation with numbering, the
// status lifecycle, items, custom field values and payments.
type OrdemService struct {
	db        *gorm.DB
	repos     OrdemRepositories
	numbering config.NumberingConfig
	metrics   *OrdemMetrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrdemService(
	db *gorm.DB,
	repos OrdemRepositories,
	numbering config.NumberingConfig,
	metrics *OrdemMetrics,
	logger *zap.Logger,
) *OrdemService {
	return &OrdemService{
		db:        db,
		repos:     repos,
		numbering: numbering,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Metrics returns the counters the service records to
func (s *OrdemService) Metrics() *OrdemMetrics {
	return s.metrics
}

// SetClock replaces the time source. Used by tests.
func (s *OrdemService) SetClock(now func() time.Time) {
	s.now = now
}

func actorFrom(ctx context.Context) *uuid.UUID {
	if userCtx, ok := auth.FromContext(ctx); ok {
		return userCtx.ActorID()
	}
	return nil
}

// buildItem resolves an item request into a priced line. Catalog references fill
// in descricao and valor_unitario when the request leaves them out.
func (s *OrdemService) buildItem(ctx context.Context, tx *gorm.DB, index int, req *domain.OSItemRequest) (domain.OSItem, error) {
	item := domain.OSItem{
		Tipo:         req.Tipo,
		ReferenciaID: req.ReferenciaID,
		Descricao:    strings.TrimSpace(req.Descricao),
		Quantidade:   req.Quantidade.Round(3),
	}
	if req.Tipo != domain.ItemTipoServico && req.Tipo != domain.ItemTipoProduto {
		return item, &domain.InvalidItemError{Index: index, Reason: "tipo must be servico or produto"}
	}

	var catalogNome string
	catalogPreco := decimal.Zero
	if req.ReferenciaID != nil {
		var err error
		switch req.Tipo {
		case domain.ItemTipoServico:
			var servico *domain.Servico
			if servico, err = s.repos.Servicos.GetByID(ctx, tx, *req.ReferenciaID); err == nil {
				catalogNome, catalogPreco = servico.Nome, servico.Preco
			}
		case domain.ItemTipoProduto:
			var produto *domain.Produto
			if produto, err = s.repos.Produtos.GetByID(ctx, tx, *req.ReferenciaID); err == nil {
				catalogNome, catalogPreco = produto.Nome, produto.Preco
			}
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return item, &domain.InvalidItemError{Index: index, Reason: "unknown catalog reference"}
			}
			return item, fmt.Errorf("failed to load catalog entry: %w", err)
		}
	}

	if item.Descricao == "" {
		item.Descricao = catalogNome
	}
	if item.Descricao == "" {
		return item, &domain.InvalidItemError{Index: index, Reason: "descricao is required"}
	}

	switch {
	case req.ValorUnitario != nil:
		item.ValorUnitario = req.ValorUnitario.Round(domain.MoneyPlaces)
	case req.ReferenciaID != nil:
		item.ValorUnitario = catalogPreco
	default:
		return item, &domain.InvalidItemError{Index: index, Reason: "valor_unitario is required"}
	}

	if err := domain.PriceItem(index, &item); err != nil {
		return item, err
	}
	return item, nil
}

func buildPagamento(index int, req *domain.PagamentoRequest, now time.Time) (domain.Pagamento, error) {
	p := domain.Pagamento{
		Forma: req.Forma,
		Valor: req.Valor.Round(domain.MoneyPlaces),
		Data:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	if !p.Valor.IsPositive() {
		return p, domain.NewValidationError(fmt.Sprintf("pagamentos[%d].valor", index), "must be greater than zero")
	}
	if req.Data != "" {
		d, err := domain.ParseDate(req.Data)
		if err != nil {
			return p, domain.NewValidationError(fmt.Sprintf("pagamentos[%d].data", index), "must be YYYY-MM-DD")
		}
		p.Data = d
	}
	return p, nil
}

// valoresMap indexes the request's field values by campo id. A campo may appear once.
func valoresMap(reqs []domain.ValorCampoRequest) (map[string]string, error) {
	m := make(map[string]string, len(reqs))
	for i, v := range reqs {
		key := v.CampoID.String()
		if _, dup := m[key]; dup {
			return nil, domain.NewValidationError(fmt.Sprintf("campos[%d].campoId", i), "campo appears more than once")
		}
		m[key] = strings.TrimSpace(v.Valor)
	}
	return m, nil
}

func toValores(ordemID uuid.UUID, reqs []domain.ValorCampoRequest) []domain.ValorCampoOS {
	valores := make([]domain.ValorCampoOS, 0, len(reqs))
	for _, v := range reqs {
		valores = append(valores, domain.ValorCampoOS{
			OrdemServicoID: ordemID,
			CampoID:        v.CampoID,
			Valor:          strings.TrimSpace(v.Valor),
		})
	}
	return valores
}

// checkVendedor verifies that vendedorID is a member of the caller's company
func (s *OrdemService) checkVendedor(ctx context.Context, vendedorID *uuid.UUID) error {
	if vendedorID == nil {
		return nil
	}
	names, err := s.repos.Profiles.NamesByUserIDs(ctx, []uuid.UUID{*vendedorID})
	if err != nil {
		return fmt.Errorf("failed to check vendedor: %w", err)
	}
	if _, ok := names[*vendedorID]; !ok {
		return domain.NewValidationError("vendedorId", "unknown vendedor")
	}
	return nil
}

// Create opens an order in the tenant's initial status. The number is reserved,
// and the order, its first ledger row, items, field values and payments are
// written in one transaction. All input is validated before the transaction starts.
func (s *OrdemService) Create(ctx context.Context, req *domain.CreateOrdemRequest) (*domain.OrdemDetalheDTO, error) {
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, ErrNoCompany
	}
	actor := actorFrom(ctx)
	now := s.now()

	prevista, err := domain.ParseDate(req.DataPrevista)
	if err != nil {
		return nil, domain.NewValidationError("dataPrevista", "must be YYYY-MM-DD")
	}

	if _, err := s.repos.Clientes.GetByID(ctx, nil, req.ClienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewValidationError("clienteId", "unknown cliente")
		}
		return nil, fmt.Errorf("failed to get cliente: %w", err)
	}
	if err := s.checkVendedor(ctx, req.VendedorID); err != nil {
		return nil, err
	}

	itens := make([]domain.OSItem, len(req.Itens))
	for i := range req.Itens {
		if itens[i], err = s.buildItem(ctx, nil, i, &req.Itens[i]); err != nil {
			return nil, err
		}
	}
	total, err := domain.RecomputeTotal(itens)
	if err != nil {
		return nil, err
	}

	campos, err := s.repos.Campos.List(ctx, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list campos: %w", err)
	}
	valores, err := valoresMap(req.Campos)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateCampos(campos, valores, true); err != nil {
		return nil, err
	}

	pagamentos := make([]domain.Pagamento, len(req.Pagamentos))
	for i := range req.Pagamentos {
		if pagamentos[i], err = buildPagamento(i, &req.Pagamentos[i], now); err != nil {
			return nil, err
		}
	}

	statuses, err := s.repos.Status.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	initial, ok := domain.InitialStatus(statuses)
	if !ok {
		return nil, ErrNoInitialStatus
	}

	ordem := &domain.OrdemServico{
		CompanyID:    companyID,
		ClienteID:    req.ClienteID,
		StatusID:     initial.ID,
		VendedorID:   req.VendedorID,
		CriadoPor:    actor,
		DataAbertura: now,
		DataPrevista: &prevista,
		ValorTotal:   total,
		Observacoes:  strings.TrimSpace(req.Observacoes),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prefixo, numero, err := s.repos.Numeracao.NextNumber(ctx, tx, companyID, s.numbering.DefaultPrefix)
		if err != nil {
			return err
		}
		ordem.NumeroOS = domain.FormatOrderNumber(prefixo, numero, s.numbering.PadWidth)

		if err := s.repos.Ordens.Create(ctx, tx, ordem); err != nil {
			return err
		}
		if err := s.repos.Historico.Append(ctx, tx, &domain.HistoricoStatus{
			CompanyID:      companyID,
			OrdemServicoID: ordem.ID,
			StatusID:       initial.ID,
			UsuarioID:      actor,
			DataHora:       now,
		}); err != nil {
			return err
		}

		for i := range itens {
			itens[i].OrdemServicoID = ordem.ID
		}
		if err := s.repos.Itens.CreateBatch(ctx, tx, itens); err != nil {
			return err
		}
		if err := s.repos.Campos.SaveValores(ctx, tx, toValores(ordem.ID, req.Campos)); err != nil {
			return err
		}
		for i := range pagamentos {
			pagamentos[i].OrdemServicoID = ordem.ID
		}
		return s.repos.Pagamentos.Create(ctx, tx, pagamentos)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &domain.ConflictError{Message: "order number already issued"}
		}
		return nil, fmt.Errorf("failed to create ordem: %w", err)
	}

	s.metrics.orderCreated()
	s.logger.Info("ordem created",
		zap.String("ordem_id", ordem.ID.String()),
		zap.String("numero_os", ordem.NumeroOS),
		zap.String("company_id", companyID.String()),
		zap.String("valor_total", total.StringFixed(domain.MoneyPlaces)))

	return s.GetByID(ctx, ordem.ID)
}

// GetByID returns the order with cliente, status, people, items, custom fields,
// payments and the status history
func (s *OrdemService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrdemDetalheDTO, error) {
	ordem, err := s.repos.Ordens.GetDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, "ordem", id)
	}
	historico, err := s.repos.Historico.ListByOrdem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	statuses, err := s.repos.Status.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	campos, err := s.repos.Campos.List(ctx, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list campos: %w", err)
	}

	people := mapper.PeopleOf(*ordem)
	for _, h := range historico {
		if h.UsuarioID != nil {
			people = append(people, *h.UsuarioID)
		}
	}
	names, err := s.repos.Profiles.NamesByUserIDs(ctx, people)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve names: %w", err)
	}

	return buildDetalhe(ordem, historico, statuses, campos, names), nil
}

func buildDetalhe(
	ordem *domain.OrdemServico,
	historico []domain.HistoricoStatus,
	statuses []domain.StatusConfig,
	campos []domain.CampoOS,
	names map[uuid.UUID]string,
) *domain.OrdemDetalheDTO {
	terminal := ordem.Status != nil && ordem.Status.IsTerminal()
	_, hasCancel := domain.CancellationStatus(statuses)

	dto := &domain.OrdemDetalheDTO{
		OrdemDTO:   mapper.ToOrdemDTO(ordem, names),
		Itens:      make([]domain.OSItemDTO, len(ordem.Itens)),
		Campos:     mapper.ToValorCampoDTOs(campos, ordem.Valores, terminal),
		Pagamentos: make([]domain.PagamentoDTO, len(ordem.Pagamentos)),
		Historico:  make([]domain.HistoricoStatusDTO, len(historico)),
		CanAdvance: !terminal,
		CanCancel:  !terminal && hasCancel,
	}
	for i := range ordem.Itens {
		dto.Itens[i] = mapper.ToOSItemDTO(&ordem.Itens[i])
	}
	for i := range ordem.Pagamentos {
		dto.Pagamentos[i] = mapper.ToPagamentoDTO(&ordem.Pagamentos[i])
	}
	for i := range historico {
		dto.Historico[i] = mapper.ToHistoricoDTO(&historico[i], names)
	}
	if next, ok := domain.NextStatus(statuses, ordem.Status); ok {
		n := mapper.ToStatusConfigDTO(next)
		dto.ProximoStatus = &n
	}
	return dto
}

// List returns a page of orders matching filter
func (s *OrdemService) List(ctx context.Context, filter *repository.OrdemFilter, sort repository.SortConfig, page, pageSize int) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)
	ordens, total, err := s.repos.Ordens.List(ctx, filter, sort, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list ordens: %w", err)
	}
	names, err := s.repos.Profiles.NamesByUserIDs(ctx, mapper.PeopleOf(ordens...))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve names: %w", err)
	}
	return paginated(mapper.ToOrdemDTOs(ordens, names), total, page, pageSize), nil
}

// History returns the order's status ledger, oldest first
func (s *OrdemService) History(ctx context.Context, id uuid.UUID) ([]domain.HistoricoStatusDTO, error) {
	if _, err := s.repos.Ordens.GetByID(ctx, nil, id); err != nil {
		return nil, notFound(err, "ordem", id)
	}
	rows, err := s.repos.Historico.ListByOrdem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, h := range rows {
		if h.UsuarioID != nil {
			ids = append(ids, *h.UsuarioID)
		}
	}
	names, err := s.repos.Profiles.NamesByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve names: %w", err)
	}
	dtos := make([]domain.HistoricoStatusDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToHistoricoDTO(&rows[i], names)
	}
	return dtos, nil
}

// mutate locks the order and runs fn inside one transaction
func (s *OrdemService) mutate(ctx context.Context, id uuid.UUID, action string, fn func(tx *gorm.DB, ordem *domain.OrdemServico) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ordem, err := s.repos.Ordens.GetForUpdate(ctx, tx, id)
		if err != nil {
			return notFound(err, "ordem", id)
		}
		return fn(tx, ordem)
	})
	return wrapUnlessDomain(err, action)
}

// Advance moves the order to targetID and appends the ledger row. Any active,
// non-cancellation status of the tenant is a valid target; moving to a final
// status stamps data_finalizacao.
func (s *OrdemService) Advance(ctx context.Context, id, targetID uuid.UUID) (*domain.OrdemDetalheDTO, error) {
	actor := actorFrom(ctx)
	kind := TransitionAdvance

	err := s.mutate(ctx, id, "advance ordem", func(tx *gorm.DB, ordem *domain.OrdemServico) error {
		target, err := s.repos.Status.GetByID(ctx, tx, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.InvalidStatusError{StatusID: targetID, Reason: "status not found"}
			}
			return err
		}
		if err := domain.ValidateTransition(ordem.CompanyID, ordem.Status, target); err != nil {
			return err
		}
		if target.IsFinal {
			kind = TransitionFinalize
		}
		return s.transition(ctx, tx, ordem, target, actor)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.transition(kind)
	return s.GetByID(ctx, id)
}

// Cancel moves the order to the tenant's cancellation status. Finalized and
// already cancelled orders are rejected.
func (s *OrdemService) Cancel(ctx context.Context, id uuid.UUID) (*domain.OrdemDetalheDTO, error) {
	actor := actorFrom(ctx)

	err := s.mutate(ctx, id, "cancel ordem", func(tx *gorm.DB, ordem *domain.OrdemServico) error {
		statuses, err := s.repos.Status.List(ctx, tx)
		if err != nil {
			return err
		}
		cancel, _ := domain.CancellationStatus(statuses)
		if err := domain.ValidateCancel(ordem.Status, cancel); err != nil {
			return err
		}
		return s.transition(ctx, tx, ordem, cancel, actor)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.transition(TransitionCancel)
	return s.GetByID(ctx, id)
}

func (s *OrdemService) transition(ctx context.Context, tx *gorm.DB, ordem *domain.OrdemServico, target *domain.StatusConfig, actor *uuid.UUID) error {
	from := ordem.StatusID
	row := domain.ApplyTransition(ordem, target, actor, s.now())
	if err := s.repos.Ordens.UpdateStatus(ctx, tx, ordem); err != nil {
		return err
	}
	if err := s.repos.Historico.Append(ctx, tx, &row); err != nil {
		return err
	}
	s.logger.Info("ordem status changed",
		zap.String("ordem_id", ordem.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", target.ID.String()))
	return nil
}

// Update changes header fields and custom field values. Header fields are frozen
// once the order is terminal; after that only fields flagged editable after
// finalization accept new values.
func (s *OrdemService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOrdemRequest) (*domain.OrdemDetalheDTO, error) {
	var prevista *time.Time
	if req.DataPrevista != nil {
		d, err := domain.ParseDate(*req.DataPrevista)
		if err != nil {
			return nil, domain.NewValidationError("dataPrevista", "must be YYYY-MM-DD")
		}
		prevista = &d
	}
	if err := s.checkVendedor(ctx, req.VendedorID); err != nil {
		return nil, err
	}
	headerChanged := req.VendedorID != nil || req.DataPrevista != nil || req.Observacoes != nil

	err := s.mutate(ctx, id, "update ordem", func(tx *gorm.DB, ordem *domain.OrdemServico) error {
		editable := domain.IsEditable(ordem.Status)
		if headerChanged && !editable {
			return domain.ErrOrdemEncerrada
		}

		if len(req.Campos) > 0 {
			valores, err := valoresMap(req.Campos)
			if err != nil {
				return err
			}
			campos, err := s.repos.Campos.List(ctx, tx, false)
			if err != nil {
				return err
			}
			if err := domain.ValidateCampos(campos, valores, false); err != nil {
				return err
			}
			if !editable {
				byID := make(map[uuid.UUID]*domain.CampoOS, len(campos))
				for i := range campos {
					byID[campos[i].ID] = &campos[i]
				}
				for _, v := range req.Campos {
					if c := byID[v.CampoID]; c == nil || !c.EditavelAposFinalizacao {
						return domain.ErrOrdemEncerrada
					}
				}
			}
			if err := s.repos.Campos.SaveValores(ctx, tx, toValores(ordem.ID, req.Campos)); err != nil {
				return err
			}
		}

		if !headerChanged {
			return nil
		}
		if req.VendedorID != nil {
			ordem.VendedorID = req.VendedorID
		}
		if prevista != nil {
			ordem.DataPrevista = prevista
		}
		if req.Observacoes != nil {
			ordem.Observacoes = strings.TrimSpace(*req.Observacoes)
		}
		return s.repos.Ordens.UpdateHeader(ctx, tx, ordem)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// recompute sums the order's stored items and writes valor_total
func (s *OrdemService) recompute(ctx context.Context, tx *gorm.DB, ordem *domain.OrdemServico) error {
	itens, err := s.repos.Itens.ListByOrdem(ctx, tx, ordem.ID)
	if err != nil {
		return err
	}
	total, err := domain.RecomputeTotal(itens)
	if err != nil {
		return err
	}
	ordem.ValorTotal = total
	return s.repos.Ordens.UpdateTotal(ctx, tx, ordem)
}

// AddItem appends a line and recomputes the order total
func (s *OrdemService) AddItem(ctx context.Context, ordemID uuid.UUID, req *domain.OSItemRequest) (*domain.OrdemDetalheDTO, error) {
	err := s.mutate(ctx, ordemID, "add item", func(tx *gorm.DB, ordem *domain.OrdemServico) error {
		if !domain.IsEditable(ordem.Status) {
			return domain.ErrOrdemEncerrada
		}
		item, err := s.buildItem(ctx, tx, 0, req)
		if err != nil {
			return err
		}
		item.OrdemServicoID = ordem.ID
		if err := s.repos.Itens.Create(ctx, tx, &item); err != nil {
			return err
		}
		return s.recompute(ctx, tx, ordem)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, ordemID)
}

// UpdateItem replaces a line and recomputes the order total
func (s *OrdemService) UpdateItem(ctx context.Context, ordemID, itemID uuid.UUID, req *domain.OSItemRequest) (*domain.OrdemDetalheDTO, error) {
	err := s.mutate(ctx, ordemID, "update item", func(tx *gorm.DB, ordem *domain.OrdemServico) error {
		if !domain.IsEditable(ordem.Status) {
			return domain.ErrOrdemEncerrada
		}
		existing, err := s.repos.Itens.GetByID(ctx, tx, ordem.ID, itemID)
		if err != nil {
			return notFound(err, "item", itemID)
		}
		item, err := s.buildItem(ctx, tx, 0, req)
		if err != nil {
			return err
		}
		item.BaseModel = existing.BaseModel
		item.OrdemServicoID = ordem.ID
		if err := s.repos.Itens.Update(ctx, tx, &item); err != nil {
			return err
		}
		return s.recompute(ctx, tx, ordem)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, ordemID)
}

// RemoveItem deletes a line and recomputes the order total
func (s *OrdemService) RemoveItem(ctx context.Context, ordemID, itemID uuid.UUID) (*domain.OrdemDetalheDTO, error) {
	err := s.mutate(ctx, ordemID, "remove item", func(tx *gorm.DB, ordem *domain.OrdemServico) error {
		if !domain.IsEditable(ordem.Status) {
			return domain.ErrOrdemEncerrada
		}
		if err := s.repos.Itens.Delete(ctx, tx, ordem.ID, itemID); err != nil {
			return notFound(err, "item", itemID)
		}
		return s.recompute(ctx, tx, ordem)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, ordemID)
}

// AddPagamento records a payment. Finalized orders may still be paid; cancelled ones may not.
func (s *OrdemService) AddPagamento(ctx context.Context, ordemID uuid.UUID, req *domain.PagamentoRequest) (*domain.OrdemDetalheDTO, error) {
	err := s.mutate(ctx, ordemID, "add pagamento", func(tx *gorm.DB, ordem *domain.OrdemServico) error {
		if ordem.Status != nil && ordem.Status.IsCancelamento {
			return ErrPagamentoOnCancelled
		}
		p, err := buildPagamento(0, req, s.now())
		if err != nil {
			return err
		}
		p.OrdemServicoID = ordem.ID
		return s.repos.Pagamentos.Create(ctx, tx, []domain.Pagamento{p})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, ordemID)
}

func (s *OrdemService) RemovePagamento(ctx context.Context, ordemID, pagamentoID uuid.UUID) (*domain.OrdemDetalheDTO, error) {
	err := s.mutate(ctx, ordemID, "remove pagamento", func(tx *gorm.DB, ordem *domain.OrdemServico) error {
		if ordem.Status != nil && ordem.Status.IsCancelamento {
			return ErrPagamentoOnCancelled
		}
		if err := s.repos.Pagamentos.Delete(ctx, tx, ordem.ID, pagamentoID); err != nil {
			return notFound(err, "pagamento", pagamentoID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, ordemID)
}
