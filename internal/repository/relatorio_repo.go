package repository

import (
	"context"
	"strings"
	"time"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LinhaRelatorio is one row of the denormalized demand + tenant + responsible
// projection used by reports and receipts.
type LinhaRelatorio struct {
	DemandaID   uuid.UUID
	CodigoUnico string
	Lavanderia  string
	ClienteNome string
	Descricao   string
	Responsavel string
	Status      model.StatusDemanda
	Preco       decimal.Decimal
	Desconto    decimal.Decimal
	CreatedAt   time.Time
	Categorias  []string `gorm:"-"`
}

// FiltroRelatorio bounds the projection. Fim is exclusive.
type FiltroRelatorio struct {
	Inicio      *time.Time
	Fim         *time.Time
	Responsavel string
}

type RelatorioRepository interface {
	ContarPorStatus(ctx context.Context, esc Escopo) (map[model.StatusDemanda]int64, error)
	SomarPreco(ctx context.Context, esc Escopo, status model.StatusDemanda) (decimal.Decimal, error)
	Projecao(ctx context.Context, esc Escopo, f FiltroRelatorio) ([]LinhaRelatorio, error)
	Responsaveis(ctx context.Context, esc Escopo) ([]string, error)
}

type relatorioRepo struct{ db *gorm.DB }

func NewRelatorioRepository(db *gorm.DB) RelatorioRepository { return &relatorioRepo{db: db} }

func (r *relatorioRepo) ContarPorStatus(ctx context.Context, esc Escopo) (map[model.StatusDemanda]int64, error) {
	var rows []struct {
		Status     string
		Quantidade int64
	}
	err := esc.Aplicar(r.db.WithContext(ctx).Model(&model.Demanda{}), "lavanderia_id").
		Select("status, COUNT(*) AS quantidade").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.StatusDemanda]int64, len(rows))
	for _, row := range rows {
		out[model.StatusDemanda(row.Status)] = row.Quantidade
	}
	return out, nil
}

func (r *relatorioRepo) SomarPreco(ctx context.Context, esc Escopo, status model.StatusDemanda) (decimal.Decimal, error) {
	var soma decimal.Decimal
	err := esc.Aplicar(r.db.WithContext(ctx).Model(&model.Demanda{}), "lavanderia_id").
		Where("status = ?", status).
		Select("COALESCE(SUM(preco), 0)").
		Row().Scan(&soma)
	return soma, err
}

func (r *relatorioRepo) Projecao(ctx context.Context, esc Escopo, f FiltroRelatorio) ([]LinhaRelatorio, error) {
	q := esc.Aplicar(r.db.WithContext(ctx).Table("demandas"), "demandas.lavanderia_id").
		Select(`demandas.id AS demanda_id, demandas.codigo_unico, lavanderias.nome AS lavanderia,
			demandas.cliente_nome, demandas.descricao, COALESCE(usuarios.nome, '') AS responsavel,
			demandas.status, demandas.preco, demandas.desconto, demandas.created_at`).
		Joins("JOIN lavanderias ON lavanderias.id = demandas.lavanderia_id").
		Joins("LEFT JOIN usuarios ON usuarios.id = demandas.responsavel_id").
		Where("demandas.status <> ?", model.StatusCancelado)

	if f.Inicio != nil {
		q = q.Where("demandas.created_at >= ?", *f.Inicio)
	}
	if f.Fim != nil {
		q = q.Where("demandas.created_at < ?", *f.Fim)
	}
	if termo := strings.TrimSpace(f.Responsavel); termo != "" {
		q = q.Where(`LOWER(COALESCE(usuarios.nome, '')) LIKE ? ESCAPE '\'`, padraoContem(termo))
	}

	var linhas []LinhaRelatorio
	if err := q.Order("demandas.created_at DESC").Scan(&linhas).Error; err != nil {
		return nil, err
	}
	if len(linhas) == 0 {
		return linhas, nil
	}

	ids := make([]uuid.UUID, len(linhas))
	for i, l := range linhas {
		ids[i] = l.DemandaID
	}
	var assoc []model.DemandaCategoria
	err := r.db.WithContext(ctx).
		Where("demanda_id IN ? AND status = ?", ids, model.SoftAtivo).
		Order("nome ASC").
		Find(&assoc).Error
	if err != nil {
		return nil, err
	}
	porDemanda := make(map[uuid.UUID][]string, len(linhas))
	for _, a := range assoc {
		porDemanda[a.DemandaID] = append(porDemanda[a.DemandaID], a.Nome)
	}
	for i := range linhas {
		linhas[i].Categorias = porDemanda[linhas[i].DemandaID]
	}
	return linhas, nil
}

func (r *relatorioRepo) Responsaveis(ctx context.Context, esc Escopo) ([]string, error) {
	var nomes []string
	err := esc.Aplicar(r.db.WithContext(ctx).Table("demandas"), "demandas.lavanderia_id").
		Joins("JOIN usuarios ON usuarios.id = demandas.responsavel_id").
		Distinct("usuarios.nome").
		Order("usuarios.nome ASC").
		Pluck("usuarios.nome", &nomes).Error
	return nomes, err
}
