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

const destinationColumns = `
	d.id, d.nome, d.estado, d.cidade, d.descricao, d.latitude, d.longitude,
	d.criador_id, p.nome AS criador_nome, d.created_at, d.updated_at
`

// DestinationRepository handles destinos
type DestinationRepository struct {
	db sqlx.ExtContext
}

// NewDestinationRepository creates a new destination repository
func NewDestinationRepository(db sqlx.ExtContext) *DestinationRepository {
	return &DestinationRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *DestinationRepository) WithTx(tx *sqlx.Tx) *DestinationRepository {
	return &DestinationRepository{db: tx}
}

// ExistsByNameCityState checks the (nome, cidade, estado) uniqueness rule.
// excludeID skips the destination being updated.
func (r *DestinationRepository) ExistsByNameCityState(ctx context.Context, nome, cidade, estado string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM destinos WHERE nome = $1 AND cidade = $2 AND estado = $3 AND ($4::uuid IS NULL OR id <> $4::uuid))`

	var exclude interface{}
	if excludeID != nil {
		exclude = *excludeID
	}

	if err := sqlx.GetContext(ctx, r.db, &exists, query, nome, cidade, estado, exclude); err != nil {
		return false, fmt.Errorf("failed to check duplicate destination: %w", err)
	}

	return exists, nil
}

// Create inserts a destination
func (r *DestinationRepository) Create(ctx context.Context, d models.NewDestination) error {
	query := `
		INSERT INTO destinos (id, nome, estado, cidade, descricao, latitude, longitude, criador_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.Nome, d.Estado, d.Cidade, d.Descricao, d.Latitude, d.Longitude, d.CriadorID,
	)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	return nil
}

// GetByID returns a destination or nil, nil when not found
func (r *DestinationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Destination, error) {
	var destination models.Destination

	query := `SELECT ` + destinationColumns + `
		FROM destinos d
		LEFT JOIN pessoas p ON p.id = d.criador_id
		WHERE d.id = $1`

	err := sqlx.GetContext(ctx, r.db, &destination, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get destination: %w", err)
	}

	return &destination, nil
}

// Exists reports whether a destination id exists
func (r *DestinationRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS(SELECT 1 FROM destinos WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check destination: %w", err)
	}
	return exists, nil
}

// List returns one page of destinations plus the total count of matches
func (r *DestinationRepository) List(ctx context.Context, filter models.DestinationFilter, page models.PageRequest) ([]models.Destination, int, error) {
	var where whereBuilder
	if filter.Estado != "" {
		where.add("d.estado = $%d", filter.Estado)
	}
	if filter.Cidade != "" {
		where.add("d.cidade ILIKE $%d", "%"+filter.Cidade+"%")
	}
	if filter.CriadorID != nil {
		where.add("d.criador_id = $%d", *filter.CriadorID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM destinos d` + where.sql()
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count destinations: %w", err)
	}

	limitClause, args := where.page(page.Limit, page.Offset())
	query := `SELECT ` + destinationColumns + `
		FROM destinos d
		LEFT JOIN pessoas p ON p.id = d.criador_id` +
		where.sql() +
		` ORDER BY d.estado, d.cidade, d.nome` +
		limitClause

	destinations := []models.Destination{}
	if err := sqlx.SelectContext(ctx, r.db, &destinations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list destinations: %w", err)
	}

	return destinations, total, nil
}

// Update applies the supplied fields. Values must already be normalized.
// Returns false when nothing was supplied.
func (r *DestinationRepository) Update(ctx context.Context, id uuid.UUID, req models.UpdateDestinationRequest) (bool, error) {
	b := newUpdateBuilder("destinos")
	if req.Nome != nil {
		b.set("nome", *req.Nome)
	}
	if req.Estado != nil {
		b.set("estado", *req.Estado)
	}
	if req.Cidade != nil {
		b.set("cidade", *req.Cidade)
	}
	if req.Descricao != nil {
		b.set("descricao", *req.Descricao)
	}
	if req.Latitude != nil {
		b.set("latitude", *req.Latitude)
	}
	if req.Longitude != nil {
		b.set("longitude", *req.Longitude)
	}
	if b.empty() {
		return false, nil
	}

	query, args := b.build("id", id, true)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("failed to update destination: %w", err)
	}

	return true, nil
}

// HasTours reports whether any passeio references the destination
func (r *DestinationRepository) HasTours(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS(SELECT 1 FROM passeios WHERE destino_id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check destination tours: %w", err)
	}
	return exists, nil
}

// Delete removes a destination
func (r *DestinationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM destinos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete destination: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("destination not found")
	}

	return nil
}
