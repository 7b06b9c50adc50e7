package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/estofaria/os-api/internal/config"
	"github.com/estofaria/os-api/internal/database"
	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile describes the starting data of a company
type SeedFile struct {
	Company   *SeedCompany    `yaml:"company"`
	Numeracao *SeedNumeracao  `yaml:"numeracao"`
	Status    []SeedStatus    `yaml:"status"`
	Catalogo  []SeedCategoria `yaml:"catalogo"`
}

type SeedCompany struct {
	Nome  string `yaml:"nome"`
	Plano string `yaml:"plano"`
}

type SeedNumeracao struct {
	Prefixo       string `yaml:"prefixo"`
	ProximoNumero int64  `yaml:"proximoNumero"`
}

type SeedStatus struct {
	Nome         string `yaml:"nome"`
	Cor          string `yaml:"cor"`
	Final        bool   `yaml:"final"`
	Cancelamento bool   `yaml:"cancelamento"`
}

type SeedCategoria struct {
	Categoria string     `yaml:"categoria"`
	Servicos  []SeedItem `yaml:"servicos"`
	Produtos  []SeedItem `yaml:"produtos"`
}

type SeedItem struct {
	Nome      string `yaml:"nome"`
	Descricao string `yaml:"descricao"`
	Preco     string `yaml:"preco"`
}

// SeedResult counts what a seed run inserted
type SeedResult struct {
	CompanyID  uuid.UUID
	Status     int
	Categorias int
	Servicos   int
	Produtos   int
	Numeracao  bool
}

func seedCmd() *cobra.Command {
	var companyFlag string

	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Load a company's status flow, catalog and numbering from a YAML file",
		Long: `Insert the data described in FILE for an existing company (--company),
or create the company named in the file when --company is omitted.

Existing data is kept: statuses are only seeded for a company without any,
categories are matched by name and the numbering counter is never reset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			seed, err := LoadSeedFile(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			var companyID uuid.UUID
			if companyFlag != "" {
				if companyID, err = uuid.Parse(companyFlag); err != nil {
					return fmt.Errorf("invalid --company: %w", err)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.NewDatabase(&cfg.Database, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			res, err := ApplySeed(cmd.Context(), db, companyID, seed)
			if err != nil {
				return err
			}

			log.Info("Seed applied",
				zap.String("company_id", res.CompanyID.String()),
				zap.Int("status", res.Status),
				zap.Int("categorias", res.Categorias),
				zap.Int("servicos", res.Servicos),
				zap.Int("produtos", res.Produtos),
				zap.Bool("numeracao", res.Numeracao),
			)
			fmt.Fprintln(cmd.OutOrStdout(), res.CompanyID)
			return nil
		},
	}
	cmd.Flags().StringVar(&companyFlag, "company", "", "ID of the company to seed")

	return cmd
}

// LoadSeedFile decodes and validates a seed document
func LoadSeedFile(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed SeedFile
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *SeedFile) validate() error {
	cancelamentos := 0
	for i, st := range s.Status {
		if strings.TrimSpace(st.Nome) == "" {
			return fmt.Errorf("status[%d]: nome is required", i)
		}
		if st.Final && st.Cancelamento {
			return fmt.Errorf("status %q: cannot be both final and cancelamento", st.Nome)
		}
		if st.Cancelamento {
			cancelamentos++
		}
	}
	if cancelamentos > 1 {
		return errors.New("only one cancelamento status is allowed")
	}

	for i, c := range s.Catalogo {
		if strings.TrimSpace(c.Categoria) == "" {
			return fmt.Errorf("catalogo[%d]: categoria is required", i)
		}
		for _, item := range append(append([]SeedItem{}, c.Servicos...), c.Produtos...) {
			if strings.TrimSpace(item.Nome) == "" {
				return fmt.Errorf("categoria %q: item nome is required", c.Categoria)
			}
			if _, err := parsePreco(item.Preco); err != nil {
				return fmt.Errorf("item %q: %w", item.Nome, err)
			}
		}
	}

	if s.Numeracao != nil && s.Numeracao.ProximoNumero < 0 {
		return errors.New("numeracao.proximoNumero must be positive")
	}
	return nil
}

func parsePreco(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid preco %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("preco %q must not be negative", s)
	}
	return d.Round(2), nil
}

// ApplySeed inserts the seed for companyID in one transaction. With a nil
// companyID the company described in the file is created first.
func ApplySeed(ctx context.Context, db *gorm.DB, companyID uuid.UUID, seed *SeedFile) (*SeedResult, error) {
	res := &SeedResult{CompanyID: companyID}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if companyID == uuid.Nil {
			if seed.Company == nil || strings.TrimSpace(seed.Company.Nome) == "" {
				return errors.New("--company is required when the seed file has no company.nome")
			}
			company := domain.Company{Nome: strings.TrimSpace(seed.Company.Nome), Plano: seed.Company.Plano, Ativo: true}
			if company.Plano == "" {
				company.Plano = "basico"
			}
			if err := tx.Create(&company).Error; err != nil {
				return fmt.Errorf("failed to create company: %w", err)
			}
			res.CompanyID = company.ID
		} else {
			var n int64
			if err := tx.Model(&domain.Company{}).Where("id = ?", companyID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("company %s not found", companyID)
			}
		}

		if err := seedStatus(tx, res, seed.Status); err != nil {
			return err
		}
		if err := seedCatalog(tx, res, seed.Catalogo); err != nil {
			return err
		}
		return seedNumeracao(tx, res, seed.Numeracao)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func seedStatus(tx *gorm.DB, res *SeedResult, statuses []SeedStatus) error {
	if len(statuses) == 0 {
		return nil
	}

	var existing int64
	if err := tx.Model(&domain.StatusConfig{}).Where("company_id = ?", res.CompanyID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	for i, st := range statuses {
		row := domain.StatusConfig{
			CompanyID:      res.CompanyID,
			Nome:           strings.TrimSpace(st.Nome),
			Cor:            st.Cor,
			Ordem:          i + 1,
			Ativo:          true,
			IsFinal:        st.Final,
			IsCancelamento: st.Cancelamento,
		}
		if row.Cor == "" {
			row.Cor = "#6b7280"
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create status %q: %w", row.Nome, err)
		}
		res.Status++
	}
	return nil
}

func seedCatalog(tx *gorm.DB, res *SeedResult, catalogo []SeedCategoria) error {
	for _, c := range catalogo {
		nome := strings.TrimSpace(c.Categoria)

		var categoria domain.Categoria
		err := tx.Where("company_id = ? AND nome = ?", res.CompanyID, nome).First(&categoria).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			categoria = domain.Categoria{CompanyID: res.CompanyID, Nome: nome, Ativo: true}
			if err := tx.Create(&categoria).Error; err != nil {
				return fmt.Errorf("failed to create categoria %q: %w", nome, err)
			}
			res.Categorias++
		case err != nil:
			return err
		}

		categoriaID := categoria.ID
		for _, item := range c.Servicos {
			preco, _ := parsePreco(item.Preco)
			created, err := createIfMissing(tx, &domain.Servico{
				CompanyID:   res.CompanyID,
				CategoriaID: &categoriaID,
				Nome:        strings.TrimSpace(item.Nome),
				Descricao:   item.Descricao,
				Preco:       preco,
				Ativo:       true,
			}, res.CompanyID, item.Nome)
			if err != nil {
				return err
			}
			if created {
				res.Servicos++
			}
		}
		for _, item := range c.Produtos {
			preco, _ := parsePreco(item.Preco)
			created, err := createIfMissing(tx, &domain.Produto{
				CompanyID:   res.CompanyID,
				CategoriaID: &categoriaID,
				Nome:        strings.TrimSpace(item.Nome),
				Descricao:   item.Descricao,
				Preco:       preco,
				Ativo:       true,
			}, res.CompanyID, item.Nome)
			if err != nil {
				return err
			}
			if created {
				res.Produtos++
			}
		}
	}
	return nil
}

// createIfMissing inserts row unless the company already has an entry with
// the same name in row's table
func createIfMissing(tx *gorm.DB, row interface{}, companyID uuid.UUID, nome string) (bool, error) {
	var n int64
	if err := tx.Model(row).Where("company_id = ? AND nome = ?", companyID, strings.TrimSpace(nome)).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := tx.Create(row).Error; err != nil {
		return false, fmt.Errorf("failed to create %q: %w", nome, err)
	}
	return true, nil
}

func seedNumeracao(tx *gorm.DB, res *SeedResult, n *SeedNumeracao) error {
	if n == nil {
		return nil
	}

	var existing int64
	if err := tx.Model(&domain.NumeracaoOS{}).Where("company_id = ?", res.CompanyID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	row := domain.NumeracaoOS{CompanyID: res.CompanyID, Prefixo: n.Prefixo, ProximoNumero: n.ProximoNumero}
	if row.ProximoNumero == 0 {
		row.ProximoNumero = 1
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create numeracao: %w", err)
	}
	res.Numeracao = true
	return nil
}
