package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/voyagee/travel-backend/internal/database"
	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/pkg/validator"
)

const (
	msgDestinationNotFound  = "Destino não encontrado"
	msgDestinationDuplicate = "Já existe um destino com este nome nesta cidade"
	msgInvalidUF            = "O estado deve ter exatamente 2 caracteres"
)

// DestinationService handles destino CRUD
type DestinationService struct {
	destinations *database.DestinationRepository
}

// NewDestinationService creates a new destination service
func NewDestinationService(destinations *database.DestinationRepository) *DestinationService {
	return &DestinationService{destinations: destinations}
}

// Create validates and stores a destination owned by identity
func (s *DestinationService) Create(ctx context.Context, identity *models.Identity, req models.CreateDestinationRequest) (destination *models.Destination, err error) {
	ctx, span := tracer.Start(ctx, "DestinationService.Create")
	defer func() { endSpan(span, err) }()

	nome := strings.TrimSpace(req.Nome)
	cidade := strings.TrimSpace(req.Cidade)
	if nome == "" || cidade == "" || strings.TrimSpace(req.Estado) == "" {
		return nil, validationError("Nome, estado e cidade são obrigatórios")
	}
	estado, err := validator.NormalizeUF(req.Estado)
	if err != nil {
		return nil, validationError(msgInvalidUF)
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	exists, err := s.destinations.ExistsByNameCityState(ctx, nome, cidade, estado, nil)
	if err != nil {
		return nil, internalError(err)
	}
	if exists {
		return nil, conflictError(msgDestinationDuplicate)
	}

	id := uuid.New()
	err = s.destinations.Create(ctx, models.NewDestination{
		ID:        id,
		Nome:      nome,
		Estado:    estado,
		Cidade:    cidade,
		Descricao: req.Descricao,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CriadorID: identity.ID,
	})
	if err != nil {
		return nil, translateWriteError(err, msgDestinationDuplicate)
	}

	return s.get(ctx, id)
}

// Get returns a destination by id
func (s *DestinationService) Get(ctx context.Context, id uuid.UUID) (destination *models.Destination, err error) {
	ctx, span := tracer.Start(ctx, "DestinationService.Get")
	defer func() { endSpan(span, err) }()

	return s.get(ctx, id)
}

func (s *DestinationService) get(ctx context.Context, id uuid.UUID) (*models.Destination, error) {
	destination, err := s.destinations.GetByID(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}
	if destination == nil {
		return nil, notFoundError(msgDestinationNotFound)
	}
	return destination, nil
}

// List returns a page of destinations filtered by exact state and city substring
func (s *DestinationService) List(ctx context.Context, filter models.DestinationFilter, page models.PageRequest) (destinations []models.Destination, pagination models.Pagination, err error) {
	ctx, span := tracer.Start(ctx, "DestinationService.List")
	defer func() { endSpan(span, err) }()

	filter.Estado = strings.ToUpper(strings.TrimSpace(filter.Estado))
	filter.Cidade = strings.TrimSpace(filter.Cidade)

	destinations, total, err := s.destinations.List(ctx, filter, page)
	if err != nil {
		return nil, models.Pagination{}, internalError(err)
	}

	return destinations, models.NewPagination(total, page), nil
}

// Update applies the allow-listed fields; only the creator or an admin may update.
// An empty patch returns the current destination unchanged.
func (s *DestinationService) Update(ctx context.Context, identity *models.Identity, id uuid.UUID, req models.UpdateDestinationRequest) (destination *models.Destination, err error) {
	ctx, span := tracer.Start(ctx, "DestinationService.Update")
	defer func() { endSpan(span, err) }()

	if err := normalizeDestinationPatch(&req); err != nil {
		return nil, err
	}

	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutate(identity, existing.OwnerID()) {
		return nil, forbiddenError("Você não tem permissão para editar este destino")
	}

	if req.Nome != nil || req.Cidade != nil || req.Estado != nil {
		nome, cidade, estado := existing.Nome, existing.Cidade, existing.Estado
		if req.Nome != nil {
			nome = *req.Nome
		}
		if req.Cidade != nil {
			cidade = *req.Cidade
		}
		if req.Estado != nil {
			estado = *req.Estado
		}
		exists, err := s.destinations.ExistsByNameCityState(ctx, nome, cidade, estado, &id)
		if err != nil {
			return nil, internalError(err)
		}
		if exists {
			return nil, conflictError(msgDestinationDuplicate)
		}
	}

	updated, err := s.destinations.Update(ctx, id, req)
	if err != nil {
		return nil, translateWriteError(err, msgDestinationDuplicate)
	}
	if !updated {
		return existing, nil
	}

	return s.get(ctx, id)
}

// Delete removes a destination; blocked while any tour references it
func (s *DestinationService) Delete(ctx context.Context, identity *models.Identity, id uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "DestinationService.Delete")
	defer func() { endSpan(span, err) }()

	existing, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(identity, existing.OwnerID()) {
		return forbiddenError("Você não tem permissão para excluir este destino")
	}

	hasTours, err := s.destinations.HasTours(ctx, id)
	if err != nil {
		return internalError(err)
	}
	if hasTours {
		return conflictError("Não é possível excluir o destino pois existem passeios vinculados")
	}

	if err := s.destinations.Delete(ctx, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return &ServiceError{Kind: KindConflict, Message: "Não é possível excluir o destino pois existem passeios vinculados", Err: err}
		}
		return internalError(err)
	}

	return nil
}

func normalizeDestinationPatch(req *models.UpdateDestinationRequest) error {
	if req.Nome != nil {
		nome := strings.TrimSpace(*req.Nome)
		if nome == "" {
			return validationError("Nome não pode ser vazio")
		}
		req.Nome = &nome
	}
	if req.Cidade != nil {
		cidade := strings.TrimSpace(*req.Cidade)
		if cidade == "" {
			return validationError("Cidade não pode ser vazia")
		}
		req.Cidade = &cidade
	}
	if req.Estado != nil {
		estado, err := validator.NormalizeUF(*req.Estado)
		if err != nil {
			return validationError(msgInvalidUF)
		}
		req.Estado = &estado
	}
	return validateCoordinates(req.Latitude, req.Longitude)
}

func validateCoordinates(latitude, longitude *float64) error {
	if latitude != nil && (*latitude < -90 || *latitude > 90) {
		return validationError("Latitude deve estar entre -90 e 90")
	}
	if longitude != nil && (*longitude < -180 || *longitude > 180) {
		return validationError("Longitude deve estar entre -180 e 180")
	}
	return nil
}
