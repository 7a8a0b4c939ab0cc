package models

import (
	"time"

	"github.com/google/uuid"
)

// Destination is a row of destinos with the creator's name joined in
type Destination struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Nome        string        `json:"nome" db:"nome"`
	Estado      string        `json:"estado" db:"estado"`
	Cidade      string        `json:"cidade" db:"cidade"`
	Descricao   NullString    `json:"descricao" db:"descricao"`
	Latitude    NullFloat64   `json:"latitude" db:"latitude"`
	Longitude   NullFloat64   `json:"longitude" db:"longitude"`
	CriadorID   uuid.NullUUID `json:"criador_id" db:"criador_id"`
	CriadorNome NullString    `json:"criador_nome" db:"criador_nome"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// OwnerID returns the creator, or nil for legacy rows without one
func (d *Destination) OwnerID() *uuid.UUID {
	if !d.CriadorID.Valid {
		return nil
	}
	return &d.CriadorID.UUID
}

// NewDestination carries validated values for an insert
type NewDestination struct {
	ID        uuid.UUID
	Nome      string
	Estado    string
	Cidade    string
	Descricao *string
	Latitude  *float64
	Longitude *float64
	CriadorID uuid.UUID
}

// DestinationFilter narrows destination listings
type DestinationFilter struct {
	Estado    string
	Cidade    string
	CriadorID *uuid.UUID
}
