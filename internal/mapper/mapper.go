package mapper

import (
	"sort"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/google/uuid"
)

// ToCompanyDTO converts Company to CompanyDTO
func ToCompanyDTO(company *domain.Company) domain.CompanyDTO {
	return domain.CompanyDTO{
		ID:    company.ID,
		Nome:  company.Nome,
		Plano: company.Plano,
		Ativo: company.Ativo,
	}
}

// ToProfileDTO converts Profile to ProfileDTO
func ToProfileDTO(profile *domain.Profile) domain.ProfileDTO {
	return domain.ProfileDTO{
		ID:        profile.ID,
		UserID:    profile.UserID,
		CompanyID: profile.CompanyID,
		Nome:      profile.Nome,
		Email:     profile.Email,
		Role:      profile.Role,
		Ativo:     profile.Ativo,
		CreatedAt: profile.CreatedAt,
	}
}

// ToClienteDTO converts Cliente to ClienteDTO with display-formatted document and phone
func ToClienteDTO(cliente *domain.Cliente) domain.ClienteDTO {
	return domain.ClienteDTO{
		ID:                 cliente.ID,
		Nome:               cliente.Nome,
		TipoDocumento:      cliente.TipoDocumento,
		Documento:          cliente.Documento,
		DocumentoFormatado: domain.FormatDocumento(cliente.TipoDocumento, cliente.Documento),
		Telefone:           cliente.Telefone,
		TelefoneFormatado:  domain.FormatPhone(cliente.Telefone),
		Email:              cliente.Email,
		CEP:                cliente.CEP,
		Rua:                cliente.Rua,
		Numero:             cliente.Numero,
		Bairro:             cliente.Bairro,
		Cidade:             cliente.Cidade,
		Estado:             cliente.Estado,
		CreatedAt:          cliente.CreatedAt,
		UpdatedAt:          cliente.UpdatedAt,
	}
}

// ToStatusConfigDTO converts StatusConfig to StatusConfigDTO
func ToStatusConfigDTO(status *domain.StatusConfig) domain.StatusConfigDTO {
	return domain.StatusConfigDTO{
		ID:             status.ID,
		Nome:           status.Nome,
		Cor:            status.Cor,
		Ordem:          status.Ordem,
		Ativo:          status.Ativo,
		IsFinal:        status.IsFinal,
		IsCancelamento: status.IsCancelamento,
	}
}

func ToStatusConfigDTOs(statuses []domain.StatusConfig) []domain.StatusConfigDTO {
	dtos := make([]domain.StatusConfigDTO, len(statuses))
	for i := range statuses {
		dtos[i] = ToStatusConfigDTO(&statuses[i])
	}
	return dtos
}

// ToCampoOSDTO converts CampoOS to CampoOSDTO
func ToCampoOSDTO(campo *domain.CampoOS) domain.CampoOSDTO {
	opcoes := []string(campo.Opcoes)
	if opcoes == nil {
		opcoes = []string{}
	}
	return domain.CampoOSDTO{
		ID:                      campo.ID,
		Nome:                    campo.Nome,
		Tipo:                    campo.Tipo,
		Obrigatorio:             campo.Obrigatorio,
		Ativo:                   campo.Ativo,
		Ordem:                   campo.Ordem,
		EditavelAposFinalizacao: campo.EditavelAposFinalizacao,
		Opcoes:                  opcoes,
	}
}

func ToCategoriaDTO(categoria *domain.Categoria) domain.CategoriaDTO {
	return domain.CategoriaDTO{
		ID:    categoria.ID,
		Nome:  categoria.Nome,
		Ativo: categoria.Ativo,
	}
}

func ToServicoDTO(servico *domain.Servico) domain.CatalogItemDTO {
	return domain.CatalogItemDTO{
		ID:          servico.ID,
		CategoriaID: servico.CategoriaID,
		Nome:        servico.Nome,
		Descricao:   servico.Descricao,
		Preco:       servico.Preco,
		Ativo:       servico.Ativo,
	}
}

func ToProdutoDTO(produto *domain.Produto) domain.CatalogItemDTO {
	return domain.CatalogItemDTO{
		ID:          produto.ID,
		CategoriaID: produto.CategoriaID,
		Nome:        produto.Nome,
		Descricao:   produto.Descricao,
		Preco:       produto.Preco,
		Ativo:       produto.Ativo,
	}
}

// ToNumeracaoDTO converts the counter and renders the number the next order will get
func ToNumeracaoDTO(n *domain.NumeracaoOS, padWidth int) domain.NumeracaoDTO {
	return domain.NumeracaoDTO{
		Prefixo:       n.Prefixo,
		ProximoNumero: n.ProximoNumero,
		Exemplo:       domain.FormatOrderNumber(n.Prefixo, n.ProximoNumero, padWidth),
	}
}

func profileSummary(id *uuid.UUID, names map[uuid.UUID]string) *domain.ProfileSummaryDTO {
	if id == nil {
		return nil
	}
	return &domain.ProfileSummaryDTO{UserID: *id, Nome: names[*id]}
}

// ToOrdemDTO converts OrdemServico to OrdemDTO. Paid amount and balance are derived
// from the preloaded payments; names resolves criador and vendedor and may be nil.
func ToOrdemDTO(ordem *domain.OrdemServico, names map[uuid.UUID]string) domain.OrdemDTO {
	pago := domain.PaymentsTotal(ordem.Pagamentos)
	dto := domain.OrdemDTO{
		ID:              ordem.ID,
		NumeroOS:        ordem.NumeroOS,
		ClienteID:       ordem.ClienteID,
		StatusID:        ordem.StatusID,
		VendedorID:      ordem.VendedorID,
		CriadoPor:       ordem.CriadoPor,
		DataAbertura:    ordem.DataAbertura,
		DataFinalizacao: ordem.DataFinalizacao,
		ValorTotal:      ordem.ValorTotal,
		ValorPago:       pago,
		Saldo:           ordem.ValorTotal.Sub(pago),
		Observacoes:     ordem.Observacoes,
		CreatedAt:       ordem.CreatedAt,
		UpdatedAt:       ordem.UpdatedAt,
		Criador:         profileSummary(ordem.CriadoPor, names),
		Vendedor:        profileSummary(ordem.VendedorID, names),
	}
	if ordem.DataPrevista != nil {
		d := domain.CalendarDate(*ordem.DataPrevista)
		dto.DataPrevista = &d
	}
	if ordem.Cliente != nil {
		c := ToClienteDTO(ordem.Cliente)
		dto.Cliente = &c
	}
	if ordem.Status != nil {
		s := ToStatusConfigDTO(ordem.Status)
		dto.Status = &s
	}
	return dto
}

func ToOrdemDTOs(ordens []domain.OrdemServico, names map[uuid.UUID]string) []domain.OrdemDTO {
	dtos := make([]domain.OrdemDTO, len(ordens))
	for i := range ordens {
		dtos[i] = ToOrdemDTO(&ordens[i], names)
	}
	return dtos
}

// PeopleOf collects the user ids referenced by orders as creator or seller
func PeopleOf(ordens ...domain.OrdemServico) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	add := func(id *uuid.UUID) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; ok {
			return
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	for i := range ordens {
		add(ordens[i].CriadoPor)
		add(ordens[i].VendedorID)
	}
	return ids
}

func ToOSItemDTO(item *domain.OSItem) domain.OSItemDTO {
	return domain.OSItemDTO{
		ID:            item.ID,
		Tipo:          item.Tipo,
		ReferenciaID:  item.ReferenciaID,
		Descricao:     item.Descricao,
		Quantidade:    item.Quantidade,
		ValorUnitario: item.ValorUnitario,
		ValorTotal:    item.ValorTotal,
	}
}

func ToPagamentoDTO(p *domain.Pagamento) domain.PagamentoDTO {
	return domain.PagamentoDTO{
		ID:    p.ID,
		Forma: p.Forma,
		Valor: p.Valor,
		Data:  p.Data,
	}
}

// ToHistoricoDTO converts a ledger row, resolving the actor name from names
func ToHistoricoDTO(h *domain.HistoricoStatus, names map[uuid.UUID]string) domain.HistoricoStatusDTO {
	dto := domain.HistoricoStatusDTO{
		ID:        h.ID,
		StatusID:  h.StatusID,
		UsuarioID: h.UsuarioID,
		DataHora:  h.DataHora,
	}
	if h.Status != nil {
		dto.StatusNome = h.Status.Nome
		dto.StatusCor = h.Status.Cor
	}
	if h.UsuarioID != nil {
		dto.UsuarioNome = names[*h.UsuarioID]
	}
	return dto
}

// ToValorCampoDTOs lists every active custom field in display order with the order's
// value, plus inactive fields that still hold a value. Editable reflects whether the
// value may change given the order's terminal state.
func ToValorCampoDTOs(campos []domain.CampoOS, valores []domain.ValorCampoOS, terminal bool) []domain.ValorCampoDTO {
	byCampo := make(map[uuid.UUID]string, len(valores))
	for _, v := range valores {
		byCampo[v.CampoID] = v.Valor
	}

	sorted := make([]domain.CampoOS, len(campos))
	copy(sorted, campos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ordem < sorted[j].Ordem })

	dtos := make([]domain.ValorCampoDTO, 0, len(sorted))
	for _, c := range sorted {
		valor, has := byCampo[c.ID]
		if !c.Ativo && !has {
			continue
		}
		dtos = append(dtos, domain.ValorCampoDTO{
			CampoID:  c.ID,
			Nome:     c.Nome,
			Tipo:     c.Tipo,
			Valor:    valor,
			Editavel: c.Ativo && (!terminal || c.EditavelAposFinalizacao),
		})
	}
	return dtos
}

// ToAuditLogDTO converts AuditLog to AuditLogDTO
func ToAuditLogDTO(log *domain.AuditLog) domain.AuditLogDTO {
	return domain.AuditLogDTO{
		ID:          log.ID,
		UserID:      log.UserID,
		UserEmail:   log.UserEmail,
		Action:      log.Action,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Method:      log.Method,
		Path:        log.Path,
		StatusCode:  log.StatusCode,
		PerformedAt: log.PerformedAt,
	}
}
