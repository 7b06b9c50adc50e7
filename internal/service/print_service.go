package service

import (
	"context"
	"fmt"
	"time"

	"github.com/estofaria/os-api/internal/auth"
	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/mapper"
	"github.com/estofaria/os-api/internal/pdf"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PrintService renders orders as PDF
type PrintService struct {
	ordens      *OrdemService
	companyRepo *repository.CompanyRepository
	loc         *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

func NewPrintService(ordens *OrdemService, companyRepo *repository.CompanyRepository, cfg config.ReportConfig, logger *zap.Logger) *PrintService {
	return &PrintService{
		ordens:      ordens,
		companyRepo: companyRepo,
		loc:         cfg.Location(),
		logger:      logger,
		now:         time.Now,
	}
}

// Print renders order id in layout with the given number of copies.
// The returned name is suitable for a Content-Disposition header.
func (s *PrintService) Print(ctx context.Context, id uuid.UUID, layoutName string, copias int) ([]byte, string, error) {
	layout, err := pdf.ParseLayout(layoutName)
	if err != nil {
		return nil, "", err
	}
	if err := pdf.ValidateCopias(copias); err != nil {
		return nil, "", err
	}
	companyID, ok := auth.CompanyIDFromContext(ctx)
	if !ok {
		return nil, "", ErrNoCompany
	}

	ordem, err := s.ordens.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", notFound(err, "company", companyID)
	}

	out, err := pdf.Render(&pdf.Document{
		Company: mapper.ToCompanyDTO(company),
		Ordem:   ordem,
		Emitido: s.now(),
		Loc:     s.loc,
	}, layout, copias)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render ordem %s: %w", ordem.NumeroOS, err)
	}

	s.logger.Debug("ordem printed",
		zap.String("ordem_id", id.String()),
		zap.String("layout", string(layout)),
		zap.Int("copias", copias),
		zap.Int("bytes", len(out)))

	return out, fmt.Sprintf("%s-%s.pdf", ordem.NumeroOS, layout), nil
}
