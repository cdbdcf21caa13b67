package repository

import (
	"context"
	"strings"
	"time"

	"lavanderia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FiltroDemanda drives the list/search read path.
type FiltroDemanda struct {
	Busca string
	// Status empty means every open demand (entregue_total and cancelado excluded).
	Status model.StatusDemanda
	Offset int
	Limit  int
}

// StatusFechados are hidden by the default list filter.
var StatusFechados = []model.StatusDemanda{model.StatusEntregueTotal, model.StatusCancelado}

type DemandaRepository interface {
	DB() *gorm.DB // exposes the DB for transaction creation in service layer

	CriarTx(tx *gorm.DB, d *model.Demanda) error
	CriarCategoriasTx(tx *gorm.DB, rows []model.DemandaCategoria) error
	CriarFotosTx(tx *gorm.DB, rows []model.DemandaFoto) error
	CriarPagamentosTx(tx *gorm.DB, rows []model.DemandaPagamento) error
	// DesativarCategoriasTx moves every active association of the demand to dtv.
	DesativarCategoriasTx(tx *gorm.DB, demandaID uuid.UUID) error
	ObterPorIDTx(tx *gorm.DB, esc Escopo, id uuid.UUID) (*model.Demanda, error)
	// AtualizarTx writes every column except status; status only moves
	// through TrocarStatusTx.
	AtualizarTx(tx *gorm.DB, d *model.Demanda) error

	ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.Demanda, error)
	Listar(ctx context.Context, esc Escopo, f FiltroDemanda) ([]model.Demanda, int64, error)
	HistoricoCategorias(ctx context.Context, esc Escopo, id uuid.UUID) ([]model.DemandaCategoria, error)
	// TrocarStatus is a compare-and-swap: it only writes when the stored status
	// still equals de. Returns false when nothing matched.
	TrocarStatus(ctx context.Context, esc Escopo, id uuid.UUID, de, para model.StatusDemanda) (bool, error)
	TrocarStatusTx(tx *gorm.DB, esc Escopo, id uuid.UUID, de, para model.StatusDemanda) (bool, error)
	Cancelar(ctx context.Context, esc Escopo, id uuid.UUID, motivo *string) (bool, error)
}

type demandaRepo struct{ db *gorm.DB }

func NewDemandaRepository(db *gorm.DB) DemandaRepository { return &demandaRepo{db: db} }

func (r *demandaRepo) DB() *gorm.DB { return r.db }

func (r *demandaRepo) CriarTx(tx *gorm.DB, d *model.Demanda) error {
	return tx.Omit(clause.Associations).Create(d).Error
}

func (r *demandaRepo) CriarCategoriasTx(tx *gorm.DB, rows []model.DemandaCategoria) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *demandaRepo) CriarFotosTx(tx *gorm.DB, rows []model.DemandaFoto) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *demandaRepo) CriarPagamentosTx(tx *gorm.DB, rows []model.DemandaPagamento) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *demandaRepo) DesativarCategoriasTx(tx *gorm.DB, demandaID uuid.UUID) error {
	return tx.Model(&model.DemandaCategoria{}).
		Where("demanda_id = ? AND status = ?", demandaID, model.SoftAtivo).
		Updates(map[string]interface{}{"status": model.SoftDesativado, "updated_at": time.Now()}).Error
}

func (r *demandaRepo) ObterPorIDTx(tx *gorm.DB, esc Escopo, id uuid.UUID) (*model.Demanda, error) {
	var d model.Demanda
	if err := esc.Aplicar(tx, "lavanderia_id").First(&d, "id = ?", id).Error; err != nil {
		return nil, naoEncontrado(err)
	}
	return &d, nil
}

func (r *demandaRepo) AtualizarTx(tx *gorm.DB, d *model.Demanda) error {
	return tx.Omit(clause.Associations, "status").Save(d).Error
}

func (r *demandaRepo) ObterPorID(ctx context.Context, esc Escopo, id uuid.UUID) (*model.Demanda, error) {
	var d model.Demanda
	err := preloadAtivos(esc.Aplicar(r.db.WithContext(ctx), "lavanderia_id")).
		First(&d, "id = ?", id).Error
	if err != nil {
		return nil, naoEncontrado(err)
	}
	return &d, nil
}

func (r *demandaRepo) Listar(ctx context.Context, esc Escopo, f FiltroDemanda) ([]model.Demanda, int64, error) {
	var list []model.Demanda
	var total int64

	q := esc.Aplicar(r.db.WithContext(ctx).Model(&model.Demanda{}), "lavanderia_id")
	if termo := strings.TrimSpace(f.Busca); termo != "" {
		like := padraoContem(termo)
		q = q.Where(`(LOWER(cliente_nome) LIKE ? ESCAPE '\' OR LOWER(descricao) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(cliente_email, '')) LIKE ? ESCAPE '\')`, like, like, like)
	}
	if f.Status == "" {
		q = q.Where("status NOT IN ?", StatusFechados)
	} else {
		q = q.Where("status = ?", f.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := preloadAtivos(q).
		Order("created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&list).Error
	return list, total, err
}

func (r *demandaRepo) HistoricoCategorias(ctx context.Context, esc Escopo, id uuid.UUID) ([]model.DemandaCategoria, error) {
	if _, err := r.ObterPorIDTx(r.db.WithContext(ctx), esc, id); err != nil {
		return nil, err
	}
	var rows []model.DemandaCategoria
	err := r.db.WithContext(ctx).Where("demanda_id = ?", id).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *demandaRepo) TrocarStatus(ctx context.Context, esc Escopo, id uuid.UUID, de, para model.StatusDemanda) (bool, error) {
	return r.TrocarStatusTx(r.db.WithContext(ctx), esc, id, de, para)
}

func (r *demandaRepo) TrocarStatusTx(tx *gorm.DB, esc Escopo, id uuid.UUID, de, para model.StatusDemanda) (bool, error) {
	res := esc.Aplicar(tx.Model(&model.Demanda{}), "lavanderia_id").
		Where("id = ? AND status = ?", id, de).
		Updates(map[string]interface{}{"status": para, "updated_at": time.Now()})
	return res.RowsAffected == 1, res.Error
}

func (r *demandaRepo) Cancelar(ctx context.Context, esc Escopo, id uuid.UUID, motivo *string) (bool, error) {
	res := esc.Aplicar(r.db.WithContext(ctx).Model(&model.Demanda{}), "lavanderia_id").
		Where("id = ? AND status NOT IN ?", id, []model.StatusDemanda{
			model.StatusEntregueParcial, model.StatusEntregueTotal, model.StatusCancelado,
		}).
		Updates(map[string]interface{}{
			"status":              model.StatusCancelado,
			"motivo_cancelamento": motivo,
			"updated_at":          time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

var escapeLike = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// padraoContem builds a lowercase LIKE pattern matching termo literally
// anywhere in the column. Use it with ESCAPE '\'.
func padraoContem(termo string) string {
	return "%" + escapeLike.Replace(strings.ToLower(termo)) + "%"
}

func preloadAtivos(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Categorias", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", model.SoftAtivo).Order("nome ASC")
		}).
		Preload("Fotos", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", model.SoftAtivo)
		}).
		Preload("Pagamentos", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", model.SoftAtivo)
		})
}
