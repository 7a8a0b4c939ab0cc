package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/voyagee/travel-backend/internal/database"
	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/pkg/validator"
)

const (
	msgItineraryNotFound = "Roteiro não encontrado"
	msgAlreadyRated      = "Você já avaliou este roteiro"
	latestRatingsLimit   = 5
)

// ItineraryService handles the roteiro lifecycle and ratings
type ItineraryService struct {
	db          database.DB
	itineraries *database.ItineraryRepository
	tours       *database.TourRepository
}

// NewItineraryService creates a new itinerary service
func NewItineraryService(db database.DB, itineraries *database.ItineraryRepository, tours *database.TourRepository) *ItineraryService {
	return &ItineraryService{
		db:          db,
		itineraries: itineraries,
		tours:       tours,
	}
}

// Create schedules a new itinerary of an existing tour with status agendado
func (s *ItineraryService) Create(ctx context.Context, identity *models.Identity, req models.CreateItineraryRequest) (itinerary *models.Itinerary, err error) {
	ctx, span := tracer.Start(ctx, "ItineraryService.Create")
	defer func() { endSpan(span, err) }()

	if req.PasseioID == nil || req.Data == nil || req.HoraInicio == nil || req.HoraFim == nil || req.VagasDisponiveis == nil {
		return nil, validationError("Campos obrigatórios: passeioId, data, horaInicio, horaFim, vagasDisponiveis")
	}

	patch := models.UpdateItineraryRequest{
		Data:             req.Data,
		HoraInicio:       req.HoraInicio,
		HoraFim:          req.HoraFim,
		VagasDisponiveis: req.VagasDisponiveis,
	}
	if err := normalizeItineraryPatch(&patch); err != nil {
		return nil, err
	}
	if err := validateTimeWindow(*patch.HoraInicio, *patch.HoraFim); err != nil {
		return nil, err
	}

	exists, err := s.tours.Exists(ctx, *req.PasseioID)
	if err != nil {
		return nil, internalError(err)
	}
	if !exists {
		return nil, notFoundError(msgTourNotFound)
	}

	id := uuid.New()
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		itineraries := s.itineraries.WithTx(tx)

		err := itineraries.Create(ctx, models.NewItinerary{
			ID:               id,
			PasseioID:        *req.PasseioID,
			CriadorID:        identity.ID,
			Data:             *patch.Data,
			HoraInicio:       *patch.HoraInicio,
			HoraFim:          *patch.HoraFim,
			VagasDisponiveis: *patch.VagasDisponiveis,
		})
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return &ServiceError{Kind: KindNotFound, Message: msgTourNotFound, Err: err}
			}
			return internalError(err)
		}

		created, err := itineraries.GetByID(ctx, id)
		if err != nil {
			return internalError(err)
		}
		itinerary = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return itinerary, nil
}

// Get returns the itinerary view with its five most recent ratings
func (s *ItineraryService) Get(ctx context.Context, id uuid.UUID) (itinerary *models.Itinerary, err error) {
	ctx, span := tracer.Start(ctx, "ItineraryService.Get")
	defer func() { endSpan(span, err) }()

	itinerary, err = s.itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}
	if itinerary == nil {
		return nil, notFoundError(msgItineraryNotFound)
	}

	ratings, err := s.itineraries.LatestRatings(ctx, id, latestRatingsLimit)
	if err != nil {
		return nil, internalError(err)
	}
	itinerary.Avaliacoes = ratings

	return itinerary, nil
}

// List returns a page of itineraries ordered by date and start time
func (s *ItineraryService) List(ctx context.Context, filter models.ItineraryFilter, page models.PageRequest) (itineraries []models.Itinerary, pagination models.Pagination, err error) {
	ctx, span := tracer.Start(ctx, "ItineraryService.List")
	defer func() { endSpan(span, err) }()

	if filter.Status != "" && !models.ValidItineraryStatus(filter.Status) {
		return nil, models.Pagination{}, validationError("Status inválido")
	}
	if filter.Data != "" {
		if _, err := validator.ParseDate(filter.Data); err != nil {
			return nil, models.Pagination{}, validationError("Data inválida, use AAAA-MM-DD")
		}
	}

	itineraries, total, err := s.itineraries.List(ctx, filter, page)
	if err != nil {
		return nil, models.Pagination{}, internalError(err)
	}

	return itineraries, models.NewPagination(total, page), nil
}

// Update applies the allow-listed fields. Only the creator or an admin may
// update, and never once the itinerary is concluido or cancelado.
func (s *ItineraryService) Update(ctx context.Context, identity *models.Identity, id uuid.UUID, req models.UpdateItineraryRequest) (itinerary *models.Itinerary, err error) {
	ctx, span := tracer.Start(ctx, "ItineraryService.Update")
	defer func() { endSpan(span, err) }()

	if err := normalizeItineraryPatch(&req); err != nil {
		return nil, err
	}

	state, err := s.loadState(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutate(identity, &state.CriadorID) {
		return nil, forbiddenError("Você não tem permissão para editar este roteiro")
	}
	if state.Status == models.StatusCompleted || state.Status == models.StatusCancelled {
		return nil, invalidStateError("Não é possível alterar um roteiro concluído ou cancelado")
	}

	if req.Data == nil && req.HoraInicio == nil && req.HoraFim == nil && req.Status == nil && req.VagasDisponiveis == nil {
		return nil, validationError(msgNoFieldsToUpdate)
	}

	if req.HoraInicio != nil || req.HoraFim != nil {
		start, end := state.HoraInicio, state.HoraFim
		if req.HoraInicio != nil {
			start = *req.HoraInicio
		}
		if req.HoraFim != nil {
			end = *req.HoraFim
		}
		if err := validateTimeWindow(start, end); err != nil {
			return nil, err
		}
	}

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		itineraries := s.itineraries.WithTx(tx)

		if _, err := itineraries.Update(ctx, id, req); err != nil {
			return internalError(err)
		}

		updated, err := itineraries.GetByID(ctx, id)
		if err != nil {
			return internalError(err)
		}
		if updated == nil {
			return notFoundError(msgItineraryNotFound)
		}
		itinerary = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	return itinerary, nil
}

// Delete removes an itinerary and its ratings. Only the creator or an admin
// may delete, and never once the itinerary is concluido.
func (s *ItineraryService) Delete(ctx context.Context, identity *models.Identity, id uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "ItineraryService.Delete")
	defer func() { endSpan(span, err) }()

	state, err := s.loadState(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(identity, &state.CriadorID) {
		return forbiddenError("Você não tem permissão para excluir este roteiro")
	}
	// cancelado stays deletable; only concluido locks deletion
	if state.Status == models.StatusCompleted {
		return invalidStateError("Não é possível excluir um roteiro concluído")
	}

	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		itineraries := s.itineraries.WithTx(tx)

		if err := itineraries.DeleteRatings(ctx, id); err != nil {
			return internalError(err)
		}
		if err := itineraries.Delete(ctx, id); err != nil {
			return internalError(err)
		}
		return nil
	})
}

// Rate records the caller's rating of a concluido itinerary and returns the
// recomputed average and count
func (s *ItineraryService) Rate(ctx context.Context, identity *models.Identity, id uuid.UUID, req models.RateItineraryRequest) (summary *models.RatingSummary, err error) {
	ctx, span := tracer.Start(ctx, "ItineraryService.Rate")
	defer func() { endSpan(span, err) }()

	if req.Nota == nil || *req.Nota < 0 || *req.Nota > 5 {
		return nil, validationError("A nota deve estar entre 0 e 5")
	}

	state, err := s.loadState(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Status != models.StatusCompleted {
		return nil, invalidStateError("Só é possível avaliar roteiros concluídos")
	}

	rated, err := s.itineraries.HasRated(ctx, id, identity.ID)
	if err != nil {
		return nil, internalError(err)
	}
	if rated {
		return nil, conflictError(msgAlreadyRated)
	}

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		itineraries := s.itineraries.WithTx(tx)

		if err := itineraries.CreateRating(ctx, id, identity.ID, *req.Nota, req.Comentario); err != nil {
			return translateWriteError(err, msgAlreadyRated)
		}

		result, err := itineraries.RatingSummary(ctx, id)
		if err != nil {
			return internalError(err)
		}
		summary = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *ItineraryService) loadState(ctx context.Context, id uuid.UUID) (*models.ItineraryState, error) {
	state, err := s.itineraries.GetState(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}
	if state == nil {
		return nil, notFoundError(msgItineraryNotFound)
	}
	return state, nil
}

func normalizeItineraryPatch(req *models.UpdateItineraryRequest) error {
	if req.Data != nil {
		if _, err := validator.ParseDate(*req.Data); err != nil {
			return validationError("Data inválida, use AAAA-MM-DD")
		}
	}
	if req.HoraInicio != nil {
		v, err := validator.NormalizeTimeOfDay(*req.HoraInicio)
		if err != nil {
			return validationError("horaInicio inválida, use HH:MM")
		}
		req.HoraInicio = &v
	}
	if req.HoraFim != nil {
		v, err := validator.NormalizeTimeOfDay(*req.HoraFim)
		if err != nil {
			return validationError("horaFim inválida, use HH:MM")
		}
		req.HoraFim = &v
	}
	if req.Status != nil && !models.ValidItineraryStatus(*req.Status) {
		return validationError("Status inválido. Use: agendado, confirmado, concluido ou cancelado")
	}
	if req.VagasDisponiveis != nil && *req.VagasDisponiveis < 0 {
		return validationError("vagasDisponiveis não pode ser negativo")
	}
	return nil
}

// validateTimeWindow expects both values in HH:MM:SS
func validateTimeWindow(start, end string) error {
	if end <= start {
		return validationError("horaFim deve ser posterior a horaInicio")
	}
	return nil
}
