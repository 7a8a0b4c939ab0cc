package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/voyagee/travel-backend/internal/models"
)

const tourColumns = `
	ps.id, ps.nome, ps.descricao, ps.preco, ps.duracao_horas, ps.nivel_dificuldade,
	ps.inclui_refeicao, ps.inclui_transporte, ps.capacidade_maxima,
	ps.destino_id, ps.criador_id,
	d.nome AS destino_nome, d.estado AS destino_estado, d.cidade AS destino_cidade,
	d.latitude AS destino_latitude, d.longitude AS destino_longitude,
	p.nome AS criador_nome, ps.created_at, ps.updated_at
`

const tourJoins = `
	FROM passeios ps
	JOIN destinos d ON d.id = ps.destino_id
	JOIN pessoas p ON p.id = ps.criador_id
`

// TourRepository handles passeios
type TourRepository struct {
	db sqlx.ExtContext
}

// NewTourRepository creates a new tour repository
func NewTourRepository(db sqlx.ExtContext) *TourRepository {
	return &TourRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *TourRepository) WithTx(tx *sqlx.Tx) *TourRepository {
	return &TourRepository{db: tx}
}

// Create inserts a tour
func (r *TourRepository) Create(ctx context.Context, t models.NewTour) error {
	query := `
		INSERT INTO passeios (
			id, nome, descricao, preco, duracao_horas, nivel_dificuldade,
			inclui_refeicao, inclui_transporte, capacidade_maxima, destino_id, criador_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Nome, t.Descricao, t.Preco, t.DuracaoHoras, t.NivelDificuldade,
		t.IncluiRefeicao, t.IncluiTransporte, t.CapacidadeMaxima, t.DestinoID, t.CriadorID,
	)
	if err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}

	return nil
}

// GetByID returns a tour or nil, nil when not found
func (r *TourRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tour, error) {
	var tour models.Tour

	query := `SELECT ` + tourColumns + tourJoins + ` WHERE ps.id = $1`

	err := sqlx.GetContext(ctx, r.db, &tour, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}

	return &tour, nil
}

// Exists reports whether a tour id exists
func (r *TourRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS(SELECT 1 FROM passeios WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check tour: %w", err)
	}
	return exists, nil
}

func tourWhere(filter models.TourFilter) whereBuilder {
	var where whereBuilder
	if filter.DestinoID != nil {
		where.add("ps.destino_id = $%d", *filter.DestinoID)
	}
	if filter.CriadorID != nil {
		where.add("ps.criador_id = $%d", *filter.CriadorID)
	}
	if filter.NivelDificuldade != "" {
		where.add("ps.nivel_dificuldade = $%d", filter.NivelDificuldade)
	}
	if filter.PrecoMin != nil {
		where.add("ps.preco >= $%d", *filter.PrecoMin)
	}
	if filter.PrecoMax != nil {
		where.add("ps.preco <= $%d", *filter.PrecoMax)
	}
	return where
}

// List returns one page of tours plus the total count of matches
func (r *TourRepository) List(ctx context.Context, filter models.TourFilter, page models.PageRequest) ([]models.Tour, int, error) {
	where := tourWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM passeios ps` + where.sql()
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count tours: %w", err)
	}

	limitClause, args := where.page(page.Limit, page.Offset())
	query := `SELECT ` + tourColumns + tourJoins + where.sql() +
		` ORDER BY ps.created_at DESC` + limitClause

	tours := []models.Tour{}
	if err := sqlx.SelectContext(ctx, r.db, &tours, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list tours: %w", err)
	}

	return tours, total, nil
}

// ListByCreator returns a page of the creator's tours annotated with their itinerary count
func (r *TourRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, nivel string, page models.PageRequest) ([]models.TourWithCount, int, error) {
	where := tourWhere(models.TourFilter{CriadorID: &creatorID, NivelDificuldade: nivel})

	var total int
	countQuery := `SELECT COUNT(*) FROM passeios ps` + where.sql()
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count creator tours: %w", err)
	}

	limitClause, args := where.page(page.Limit, page.Offset())
	query := `SELECT ` + tourColumns + `,
		(SELECT COUNT(*) FROM roteiros r WHERE r.passeio_id = ps.id) AS total_roteiros` +
		tourJoins + where.sql() +
		` ORDER BY ps.created_at DESC` + limitClause

	tours := []models.TourWithCount{}
	if err := sqlx.SelectContext(ctx, r.db, &tours, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list creator tours: %w", err)
	}

	return tours, total, nil
}

// Update applies the supplied fields; id and criador_id are never written.
// Returns false when nothing was supplied.
func (r *TourRepository) Update(ctx context.Context, id uuid.UUID, req models.UpdateTourRequest) (bool, error) {
	b := newUpdateBuilder("passeios")
	if req.Nome != nil {
		b.set("nome", *req.Nome)
	}
	if req.Descricao != nil {
		b.set("descricao", *req.Descricao)
	}
	if req.Preco != nil {
		b.set("preco", *req.Preco)
	}
	if req.DestinoID != nil {
		b.set("destino_id", *req.DestinoID)
	}
	if req.DuracaoHoras != nil {
		b.set("duracao_horas", *req.DuracaoHoras)
	}
	if req.NivelDificuldade != nil {
		b.set("nivel_dificuldade", *req.NivelDificuldade)
	}
	if req.IncluiRefeicao != nil {
		b.set("inclui_refeicao", *req.IncluiRefeicao)
	}
	if req.IncluiTransporte != nil {
		b.set("inclui_transporte", *req.IncluiTransporte)
	}
	if req.CapacidadeMaxima != nil {
		b.set("capacidade_maxima", *req.CapacidadeMaxima)
	}
	if b.empty() {
		return false, nil
	}

	query, args := b.build("id", id, true)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("failed to update tour: %w", err)
	}

	return true, nil
}

// HasItineraries reports whether any roteiro references the tour
func (r *TourRepository) HasItineraries(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS(SELECT 1 FROM roteiros WHERE passeio_id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check tour itineraries: %w", err)
	}
	return exists, nil
}

// Delete removes a tour
func (r *TourRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM passeios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tour not found")
	}

	return nil
}
