package models

import "github.com/google/uuid"

// RegisterRequest is the public sign-up payload. Address fields apply to guides only.
type RegisterRequest struct {
	UserType       string  `json:"userType"`
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	CPF            string  `json:"cpf" binding:"required"`
	Phone          string  `json:"phone"`
	Password       string  `json:"password" binding:"required,min=6"`
	DataNascimento *string `json:"dataNascimento"`
	Biografia      *string `json:"biografia"`
	Country        *string `json:"country"`
	State          *string `json:"state"`
	City           *string `json:"city"`
	ZipCode        *string `json:"zipCode"`
	StreetAddress  *string `json:"streetAddress"`
	Number         *string `json:"number"`
	Complement     *string `json:"complement"`
	Bairro         *string `json:"bairro"`
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest lists the profile fields a person may change.
// Unknown keys in the body are ignored; nil means "not supplied".
type UpdateProfileRequest struct {
	Nome           *string       `json:"nome"`
	Telefone       *string       `json:"telefone"`
	DataNascimento *string       `json:"data_nascimento"`
	Biografia      *string       `json:"biografia"`
	Endereco       *AddressPatch `json:"endereco"`
}

// AddressPatch lists the address fields a guide may change
type AddressPatch struct {
	CEP         *string `json:"cep"`
	Pais        *string `json:"pais"`
	Estado      *string `json:"estado"`
	Cidade      *string `json:"cidade"`
	Bairro      *string `json:"bairro"`
	Rua         *string `json:"rua"`
	Numero      *string `json:"numero"`
	Complemento *string `json:"complemento"`
}

// CreateDestinationRequest is the destination create payload
type CreateDestinationRequest struct {
	Nome      string   `json:"nome" binding:"required"`
	Estado    string   `json:"estado" binding:"required"`
	Cidade    string   `json:"cidade" binding:"required"`
	Descricao *string  `json:"descricao"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
}

// UpdateDestinationRequest lists the destination fields that may change
type UpdateDestinationRequest struct {
	Nome      *string  `json:"nome"`
	Estado    *string  `json:"estado"`
	Cidade    *string  `json:"cidade"`
	Descricao *string  `json:"descricao"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CreateTourRequest is the tour create payload
type CreateTourRequest struct {
	Nome             string     `json:"nome" binding:"required"`
	Descricao        *string    `json:"descricao"`
	Preco            *float64   `json:"preco" binding:"required,gte=0"`
	DestinoID        *uuid.UUID `json:"destino_id" binding:"required"`
	DuracaoHoras     *float64   `json:"duracao_horas" binding:"required,gt=0"`
	NivelDificuldade string     `json:"nivel_dificuldade" binding:"required,oneof=facil moderado dificil"`
	IncluiRefeicao   *bool      `json:"inclui_refeicao"`
	IncluiTransporte *bool      `json:"inclui_transporte"`
	CapacidadeMaxima *int       `json:"capacidade_maxima" binding:"omitempty,gt=0"`
}

// UpdateTourRequest lists the tour fields that may change. The id and the
// creator are deliberately absent.
type UpdateTourRequest struct {
	Nome             *string    `json:"nome"`
	Descricao        *string    `json:"descricao"`
	Preco            *float64   `json:"preco"`
	DestinoID        *uuid.UUID `json:"destino_id"`
	DuracaoHoras     *float64   `json:"duracao_horas"`
	NivelDificuldade *string    `json:"nivel_dificuldade"`
	IncluiRefeicao   *bool      `json:"inclui_refeicao"`
	IncluiTransporte *bool      `json:"inclui_transporte"`
	CapacidadeMaxima *int       `json:"capacidade_maxima"`
}

// CreateItineraryRequest is the itinerary create payload; every field is required
type CreateItineraryRequest struct {
	PasseioID        *uuid.UUID `json:"passeioId" binding:"required"`
	Data             *string    `json:"data" binding:"required"`
	HoraInicio       *string    `json:"horaInicio" binding:"required"`
	HoraFim          *string    `json:"horaFim" binding:"required"`
	VagasDisponiveis *int       `json:"vagasDisponiveis" binding:"required,gte=0"`
}

// UpdateItineraryRequest lists the itinerary fields that may change.
// VagasDisponiveis of 0 is a valid value, distinct from nil.
type UpdateItineraryRequest struct {
	Data             *string `json:"data"`
	HoraInicio       *string `json:"horaInicio"`
	HoraFim          *string `json:"horaFim"`
	Status           *string `json:"status"`
	VagasDisponiveis *int    `json:"vagasDisponiveis"`
}

// RateItineraryRequest is the rating payload
type RateItineraryRequest struct {
	Nota       *int    `json:"nota" binding:"required,gte=0,lte=5"`
	Comentario *string `json:"comentario"`
}
