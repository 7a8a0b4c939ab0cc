package models

import (
	"time"

	"github.com/google/uuid"
)

// Itinerary statuses
const (
	StatusScheduled = "agendado"
	StatusConfirmed = "confirmado"
	StatusCompleted = "concluido"
	StatusCancelled = "cancelado"
)

// ValidItineraryStatus reports whether status is a known itinerary status
func ValidItineraryStatus(status string) bool {
	switch status {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ItineraryState is the minimal row needed for lifecycle and ownership checks
type ItineraryState struct {
	ID         uuid.UUID `db:"id"`
	CriadorID  uuid.UUID `db:"criador_id"`
	Status     string    `db:"status"`
	HoraInicio string    `db:"hora_inicio"`
	HoraFim    string    `db:"hora_fim"`
}

// Itinerary is a roteiro joined with tour, destination, creator and its rating aggregate
type Itinerary struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PasseioID        uuid.UUID  `json:"passeio_id" db:"passeio_id"`
	CriadorID        uuid.UUID  `json:"criador_id" db:"criador_id"`
	Data             string     `json:"data" db:"data"`
	HoraInicio       string     `json:"hora_inicio" db:"hora_inicio"`
	HoraFim          string     `json:"hora_fim" db:"hora_fim"`
	Status           string     `json:"status" db:"status"`
	VagasDisponiveis int        `json:"vagas_disponiveis" db:"vagas_disponiveis"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	PasseioNome      string     `json:"passeio_nome" db:"passeio_nome"`
	PasseioDescricao NullString `json:"passeio_descricao" db:"passeio_descricao"`
	Preco            float64    `json:"preco" db:"preco"`
	DuracaoHoras     float64    `json:"duracao_horas" db:"duracao_horas"`
	NivelDificuldade string     `json:"nivel_dificuldade" db:"nivel_dificuldade"`
	DestinoID        uuid.UUID  `json:"destino_id" db:"destino_id"`
	DestinoNome      string     `json:"destino_nome" db:"destino_nome"`
	DestinoCidade    string     `json:"destino_cidade" db:"destino_cidade"`
	DestinoEstado    string     `json:"destino_estado" db:"destino_estado"`
	CriadorNome      string     `json:"criador_nome" db:"criador_nome"`
	CriadorIsGuia    bool       `json:"criador_is_guia" db:"criador_is_guia"`
	AvaliacaoMedia   float64    `json:"avaliacao_media" db:"avaliacao_media"`
	TotalAvaliacoes  int        `json:"total_avaliacoes" db:"total_avaliacoes"`
	Avaliacoes       []Rating   `json:"avaliacoes,omitempty" db:"-"`
}

// NewItinerary carries validated values for an insert
type NewItinerary struct {
	ID               uuid.UUID
	PasseioID        uuid.UUID
	CriadorID        uuid.UUID
	Data             string
	HoraInicio       string
	HoraFim          string
	VagasDisponiveis int
}

// ItineraryFilter narrows itinerary listings
type ItineraryFilter struct {
	Status    string
	Data      string
	DestinoID *uuid.UUID
	CriadorID *uuid.UUID
}

// Rating is one avaliação as shown on the itinerary detail
type Rating struct {
	Nota          int        `json:"nota" db:"nota"`
	Comentario    NullString `json:"comentario" db:"comentario"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	AvaliadorNome string     `json:"avaliador_nome" db:"avaliador_nome"`
}

// RatingSummary is the aggregate computed after a rating insert
type RatingSummary struct {
	Media           float64 `json:"media" db:"media"`
	TotalAvaliacoes int     `json:"total_avaliacoes" db:"total_avaliacoes"`
}
