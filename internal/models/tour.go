package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty levels for passeios
const (
	DifficultyEasy     = "facil"
	DifficultyModerate = "moderado"
	DifficultyHard     = "dificil"
)

// ValidDifficulty reports whether level is one of the known difficulty levels
func ValidDifficulty(level string) bool {
	switch level {
	case DifficultyEasy, DifficultyModerate, DifficultyHard:
		return true
	}
	return false
}

// Tour is a passeio joined with its destination and creator
type Tour struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	Nome             string      `json:"nome" db:"nome"`
	Descricao        NullString  `json:"descricao" db:"descricao"`
	Preco            float64     `json:"preco" db:"preco"`
	DuracaoHoras     float64     `json:"duracao_horas" db:"duracao_horas"`
	NivelDificuldade string      `json:"nivel_dificuldade" db:"nivel_dificuldade"`
	IncluiRefeicao   bool        `json:"inclui_refeicao" db:"inclui_refeicao"`
	IncluiTransporte bool        `json:"inclui_transporte" db:"inclui_transporte"`
	CapacidadeMaxima NullInt64   `json:"capacidade_maxima" db:"capacidade_maxima"`
	DestinoID        uuid.UUID   `json:"destino_id" db:"destino_id"`
	CriadorID        uuid.UUID   `json:"criador_id" db:"criador_id"`
	DestinoNome      string      `json:"destino_nome" db:"destino_nome"`
	DestinoEstado    string      `json:"destino_estado" db:"destino_estado"`
	DestinoCidade    string      `json:"destino_cidade" db:"destino_cidade"`
	DestinoLatitude  NullFloat64 `json:"destino_latitude" db:"destino_latitude"`
	DestinoLongitude NullFloat64 `json:"destino_longitude" db:"destino_longitude"`
	CriadorNome      string      `json:"criador_nome" db:"criador_nome"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// TourWithCount is a tour annotated with how many itineraries reference it
type TourWithCount struct {
	Tour
	TotalRoteiros int `json:"total_roteiros" db:"total_roteiros"`
}

// NewTour carries validated values for an insert
type NewTour struct {
	ID               uuid.UUID
	Nome             string
	Descricao        *string
	Preco            float64
	DuracaoHoras     float64
	NivelDificuldade string
	IncluiRefeicao   bool
	IncluiTransporte bool
	CapacidadeMaxima *int
	DestinoID        uuid.UUID
	CriadorID        uuid.UUID
}

// TourFilter narrows tour listings. Price bounds are inclusive.
type TourFilter struct {
	DestinoID        *uuid.UUID
	CriadorID        *uuid.UUID
	NivelDificuldade string
	PrecoMin         *float64
	PrecoMax         *float64
}
