package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/voyagee/travel-backend/internal/database"
	"github.com/voyagee/travel-backend/internal/models"
)

const (
	msgTourNotFound      = "Passeio não encontrado"
	msgInvalidDifficulty = "Nível de dificuldade inválido. Use: facil, moderado ou dificil"
	msgNoFieldsToUpdate  = "Nenhum campo para atualizar"
)

// TourService handles passeio CRUD
type TourService struct {
	tours        *database.TourRepository
	destinations *database.DestinationRepository
}

// NewTourService creates a new tour service
func NewTourService(tours *database.TourRepository, destinations *database.DestinationRepository) *TourService {
	return &TourService{
		tours:        tours,
		destinations: destinations,
	}
}

// Create stores a tour owned by identity; the destination must exist
func (s *TourService) Create(ctx context.Context, identity *models.Identity, req models.CreateTourRequest) (tour *models.Tour, err error) {
	ctx, span := tracer.Start(ctx, "TourService.Create")
	defer func() { endSpan(span, err) }()

	nome := strings.TrimSpace(req.Nome)
	if nome == "" || req.DestinoID == nil || req.Preco == nil || req.DuracaoHoras == nil || req.NivelDificuldade == "" {
		return nil, validationError("Nome, destino_id, preco, duracao_horas e nivel_dificuldade são obrigatórios")
	}
	patch := models.UpdateTourRequest{
		Preco:            req.Preco,
		DuracaoHoras:     req.DuracaoHoras,
		NivelDificuldade: &req.NivelDificuldade,
		CapacidadeMaxima: req.CapacidadeMaxima,
	}
	if err := validateTourFields(patch); err != nil {
		return nil, err
	}

	if err := s.requireDestination(ctx, *req.DestinoID); err != nil {
		return nil, err
	}

	id := uuid.New()
	err = s.tours.Create(ctx, models.NewTour{
		ID:               id,
		Nome:             nome,
		Descricao:        req.Descricao,
		Preco:            *req.Preco,
		DuracaoHoras:     *req.DuracaoHoras,
		NivelDificuldade: req.NivelDificuldade,
		IncluiRefeicao:   req.IncluiRefeicao != nil && *req.IncluiRefeicao,
		IncluiTransporte: req.IncluiTransporte != nil && *req.IncluiTransporte,
		CapacidadeMaxima: req.CapacidadeMaxima,
		DestinoID:        *req.DestinoID,
		CriadorID:        identity.ID,
	})
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, &ServiceError{Kind: KindNotFound, Message: msgDestinationNotFound, Err: err}
		}
		return nil, internalError(err)
	}

	return s.get(ctx, id)
}

// Get returns a tour by id with destination and creator joined
func (s *TourService) Get(ctx context.Context, id uuid.UUID) (tour *models.Tour, err error) {
	ctx, span := tracer.Start(ctx, "TourService.Get")
	defer func() { endSpan(span, err) }()

	return s.get(ctx, id)
}

func (s *TourService) get(ctx context.Context, id uuid.UUID) (*models.Tour, error) {
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}
	if tour == nil {
		return nil, notFoundError(msgTourNotFound)
	}
	return tour, nil
}

// List returns a page of tours matching filter
func (s *TourService) List(ctx context.Context, filter models.TourFilter, page models.PageRequest) (tours []models.Tour, pagination models.Pagination, err error) {
	ctx, span := tracer.Start(ctx, "TourService.List")
	defer func() { endSpan(span, err) }()

	if filter.NivelDificuldade != "" && !models.ValidDifficulty(filter.NivelDificuldade) {
		return nil, models.Pagination{}, validationError(msgInvalidDifficulty)
	}
	if filter.PrecoMin != nil && filter.PrecoMax != nil && *filter.PrecoMin > *filter.PrecoMax {
		return nil, models.Pagination{}, validationError("preco_min não pode ser maior que preco_max")
	}

	tours, total, err := s.tours.List(ctx, filter, page)
	if err != nil {
		return nil, models.Pagination{}, internalError(err)
	}

	return tours, models.NewPagination(total, page), nil
}

// ListByCreator returns a page of a person's tours, each with its itinerary count
func (s *TourService) ListByCreator(ctx context.Context, creatorID uuid.UUID, nivel string, page models.PageRequest) (tours []models.TourWithCount, pagination models.Pagination, err error) {
	ctx, span := tracer.Start(ctx, "TourService.ListByCreator")
	defer func() { endSpan(span, err) }()

	if nivel != "" && !models.ValidDifficulty(nivel) {
		return nil, models.Pagination{}, validationError(msgInvalidDifficulty)
	}

	tours, total, err := s.tours.ListByCreator(ctx, creatorID, nivel, page)
	if err != nil {
		return nil, models.Pagination{}, internalError(err)
	}

	return tours, models.NewPagination(total, page), nil
}

// Update applies the allow-listed fields; only the creator or an admin may update
func (s *TourService) Update(ctx context.Context, identity *models.Identity, id uuid.UUID, req models.UpdateTourRequest) (tour *models.Tour, err error) {
	ctx, span := tracer.Start(ctx, "TourService.Update")
	defer func() { endSpan(span, err) }()

	if req.Nome != nil {
		nome := strings.TrimSpace(*req.Nome)
		if nome == "" {
			return nil, validationError("Nome não pode ser vazio")
		}
		req.Nome = &nome
	}
	if err := validateTourFields(req); err != nil {
		return nil, err
	}

	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutate(identity, &existing.CriadorID) {
		return nil, forbiddenError("Você não tem permissão para editar este passeio")
	}

	if req.DestinoID != nil {
		if err := s.requireDestination(ctx, *req.DestinoID); err != nil {
			return nil, err
		}
	}

	updated, err := s.tours.Update(ctx, id, req)
	if err != nil {
		return nil, internalError(err)
	}
	if !updated {
		return nil, validationError(msgNoFieldsToUpdate)
	}

	return s.get(ctx, id)
}

// Delete removes a tour; blocked while any itinerary references it
func (s *TourService) Delete(ctx context.Context, identity *models.Identity, id uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "TourService.Delete")
	defer func() { endSpan(span, err) }()

	existing, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(identity, &existing.CriadorID) {
		return forbiddenError("Você não tem permissão para excluir este passeio")
	}

	hasItineraries, err := s.tours.HasItineraries(ctx, id)
	if err != nil {
		return internalError(err)
	}
	if hasItineraries {
		return conflictError("Não é possível excluir o passeio pois existem roteiros vinculados")
	}

	if err := s.tours.Delete(ctx, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return &ServiceError{Kind: KindConflict, Message: "Não é possível excluir o passeio pois existem roteiros vinculados", Err: err}
		}
		return internalError(err)
	}

	return nil
}

func (s *TourService) requireDestination(ctx context.Context, id uuid.UUID) error {
	exists, err := s.destinations.Exists(ctx, id)
	if err != nil {
		return internalError(err)
	}
	if !exists {
		return notFoundError(msgDestinationNotFound)
	}
	return nil
}

func validateTourFields(req models.UpdateTourRequest) error {
	if req.Preco != nil && *req.Preco < 0 {
		return validationError("Preço não pode ser negativo")
	}
	if req.DuracaoHoras != nil && *req.DuracaoHoras <= 0 {
		return validationError("Duração deve ser maior que zero")
	}
	if req.NivelDificuldade != nil && !models.ValidDifficulty(*req.NivelDificuldade) {
		return validationError(msgInvalidDifficulty)
	}
	if req.CapacidadeMaxima != nil && *req.CapacidadeMaxima <= 0 {
		return validationError("Capacidade máxima deve ser maior que zero")
	}
	return nil
}
