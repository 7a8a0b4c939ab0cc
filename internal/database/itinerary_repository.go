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

const itinerarySelect = `
	SELECT r.id, r.passeio_id, r.criador_id,
	       to_char(r.data, 'YYYY-MM-DD') AS data,
	       to_char(r.hora_inicio, 'HH24:MI') AS hora_inicio,
	       to_char(r.hora_fim, 'HH24:MI') AS hora_fim,
	       r.status, r.vagas_disponiveis, r.created_at, r.updated_at,
	       ps.nome AS passeio_nome, ps.descricao AS passeio_descricao,
	       ps.preco, ps.duracao_horas, ps.nivel_dificuldade,
	       d.id AS destino_id, d.nome AS destino_nome,
	       d.cidade AS destino_cidade, d.estado AS destino_estado,
	       p.nome AS criador_nome,
	       EXISTS(SELECT 1 FROM guias g WHERE g.pessoa_id = r.criador_id) AS criador_is_guia,
	       COALESCE(av.media, 0) AS avaliacao_media,
	       COALESCE(av.total, 0) AS total_avaliacoes
	FROM roteiros r
	JOIN passeios ps ON ps.id = r.passeio_id
	JOIN destinos d ON d.id = ps.destino_id
	JOIN pessoas p ON p.id = r.criador_id
	LEFT JOIN (
		SELECT roteiro_id, ROUND(AVG(nota)::numeric, 1) AS media, COUNT(*) AS total
		FROM avaliacoes_roteiro
		GROUP BY roteiro_id
	) av ON av.roteiro_id = r.id
`

// ItineraryRepository handles roteiros and avaliacoes_roteiro
type ItineraryRepository struct {
	db sqlx.ExtContext
}

// NewItineraryRepository creates a new itinerary repository
func NewItineraryRepository(db sqlx.ExtContext) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *ItineraryRepository) WithTx(tx *sqlx.Tx) *ItineraryRepository {
	return &ItineraryRepository{db: tx}
}

// Create inserts an itinerary with status agendado
func (r *ItineraryRepository) Create(ctx context.Context, it models.NewItinerary) error {
	query := `
		INSERT INTO roteiros (id, passeio_id, criador_id, data, hora_inicio, hora_fim, status, vagas_disponiveis)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		it.ID, it.PasseioID, it.CriadorID, it.Data, it.HoraInicio, it.HoraFim,
		models.StatusScheduled, it.VagasDisponiveis,
	)
	if err != nil {
		return fmt.Errorf("failed to create itinerary: %w", err)
	}

	return nil
}

// GetState loads the fields used for ownership and lifecycle checks.
// Returns nil, nil when not found.
func (r *ItineraryRepository) GetState(ctx context.Context, id uuid.UUID) (*models.ItineraryState, error) {
	var state models.ItineraryState

	query := `
		SELECT id, criador_id, status,
		       to_char(hora_inicio, 'HH24:MI:SS') AS hora_inicio,
		       to_char(hora_fim, 'HH24:MI:SS') AS hora_fim
		FROM roteiros
		WHERE id = $1
	`

	err := sqlx.GetContext(ctx, r.db, &state, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get itinerary state: %w", err)
	}

	return &state, nil
}

// GetByID returns the joined itinerary view or nil, nil when not found
func (r *ItineraryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Itinerary, error) {
	var itinerary models.Itinerary

	err := sqlx.GetContext(ctx, r.db, &itinerary, itinerarySelect+` WHERE r.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	return &itinerary, nil
}

// LatestRatings returns the newest ratings of an itinerary
func (r *ItineraryRepository) LatestRatings(ctx context.Context, id uuid.UUID, limit int) ([]models.Rating, error) {
	ratings := []models.Rating{}

	query := `
		SELECT a.nota, a.comentario, a.created_at, p.nome AS avaliador_nome
		FROM avaliacoes_roteiro a
		JOIN pessoas p ON p.id = a.usuario_id
		WHERE a.roteiro_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2
	`

	if err := sqlx.SelectContext(ctx, r.db, &ratings, query, id, limit); err != nil {
		return nil, fmt.Errorf("failed to get itinerary ratings: %w", err)
	}

	return ratings, nil
}

// List returns one page of itineraries, soonest first, plus the total count of matches
func (r *ItineraryRepository) List(ctx context.Context, filter models.ItineraryFilter, page models.PageRequest) ([]models.Itinerary, int, error) {
	var where whereBuilder
	if filter.Status != "" {
		where.add("r.status = $%d", filter.Status)
	}
	if filter.Data != "" {
		where.add("r.data = $%d", filter.Data)
	}
	if filter.DestinoID != nil {
		where.add("ps.destino_id = $%d", *filter.DestinoID)
	}
	if filter.CriadorID != nil {
		where.add("r.criador_id = $%d", *filter.CriadorID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM roteiros r JOIN passeios ps ON ps.id = r.passeio_id` + where.sql()
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count itineraries: %w", err)
	}

	limitClause, args := where.page(page.Limit, page.Offset())
	query := itinerarySelect + where.sql() + ` ORDER BY r.data ASC, r.hora_inicio ASC` + limitClause

	itineraries := []models.Itinerary{}
	if err := sqlx.SelectContext(ctx, r.db, &itineraries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list itineraries: %w", err)
	}

	return itineraries, total, nil
}

// Update applies the supplied fields. Values must already be validated.
// Returns false when nothing was supplied.
func (r *ItineraryRepository) Update(ctx context.Context, id uuid.UUID, req models.UpdateItineraryRequest) (bool, error) {
	b := newUpdateBuilder("roteiros")
	if req.Data != nil {
		b.set("data", *req.Data)
	}
	if req.HoraInicio != nil {
		b.set("hora_inicio", *req.HoraInicio)
	}
	if req.HoraFim != nil {
		b.set("hora_fim", *req.HoraFim)
	}
	if req.Status != nil {
		b.set("status", *req.Status)
	}
	if req.VagasDisponiveis != nil {
		b.set("vagas_disponiveis", *req.VagasDisponiveis)
	}
	if b.empty() {
		return false, nil
	}

	query, args := b.build("id", id, true)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("failed to update itinerary: %w", err)
	}

	return true, nil
}

// DeleteRatings removes every rating of an itinerary
func (r *ItineraryRepository) DeleteRatings(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM avaliacoes_roteiro WHERE roteiro_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete itinerary ratings: %w", err)
	}
	return nil
}

// Delete removes an itinerary
func (r *ItineraryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM roteiros WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("itinerary not found")
	}

	return nil
}

// HasRated reports whether the person already rated the itinerary
func (r *ItineraryRepository) HasRated(ctx context.Context, itineraryID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM avaliacoes_roteiro WHERE roteiro_id = $1 AND usuario_id = $2)`
	if err := sqlx.GetContext(ctx, r.db, &exists, query, itineraryID, userID); err != nil {
		return false, fmt.Errorf("failed to check existing rating: %w", err)
	}
	return exists, nil
}

// CreateRating inserts a rating
func (r *ItineraryRepository) CreateRating(ctx context.Context, itineraryID, userID uuid.UUID, nota int, comentario *string) error {
	query := `
		INSERT INTO avaliacoes_roteiro (id, roteiro_id, usuario_id, nota, comentario)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), itineraryID, userID, nota, comentario); err != nil {
		return fmt.Errorf("failed to create rating: %w", err)
	}

	return nil
}

// RatingSummary aggregates the average (one decimal) and count of an itinerary's ratings
func (r *ItineraryRepository) RatingSummary(ctx context.Context, itineraryID uuid.UUID) (*models.RatingSummary, error) {
	var summary models.RatingSummary

	query := `
		SELECT COALESCE(ROUND(AVG(nota)::numeric, 1), 0) AS media, COUNT(*) AS total_avaliacoes
		FROM avaliacoes_roteiro
		WHERE roteiro_id = $1
	`

	if err := sqlx.GetContext(ctx, r.db, &summary, query, itineraryID); err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	return &summary, nil
}
