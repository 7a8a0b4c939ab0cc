package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles stored in auths.role
const (
	RoleUser  = "user"
	RoleGuide = "guide"
	RoleAdmin = "admin"
)

// Derived person type, "guia" when a guias row exists
const (
	TipoGuia     = "guia"
	TipoViajante = "viajante"
)

// Registration user types
const (
	UserTypeViajante = "viajante"
	UserTypeGuia     = "guia"
	UserTypeAdmin    = "admin"
)

// Guide verification status
const (
	VerificationPending  = "pendente"
	VerificationVerified = "verificado"
	VerificationRejected = "rejeitado"
)

// Identity is the authenticated caller, re-loaded from storage on every
// protected request and passed explicitly into service calls.
type Identity struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Nome     string     `json:"nome" db:"nome"`
	Email    string     `json:"email" db:"email"`
	Telefone NullString `json:"telefone" db:"telefone"`
	Role     string     `json:"role" db:"role"`
	Tipo     string     `json:"tipo" db:"tipo"`
	IsActive bool       `json:"-" db:"is_active"`
}

// IsAdmin reports whether the identity holds the admin role
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// IsGuide reports whether the identity has a guide record
func (i *Identity) IsGuide() bool {
	return i != nil && i.Tipo == TipoGuia
}

// Person is a row of pessoas
type Person struct {
	ID             uuid.UUID
	Nome           string
	CPF            string
	Email          string
	Telefone       *string
	DataNascimento *string
	Biografia      *string
}

// Address is a row of enderecos
type Address struct {
	ID          uuid.UUID
	CEP         *string
	Pais        *string
	Estado      *string
	Cidade      *string
	Bairro      *string
	Rua         *string
	Numero      *string
	Complemento *string
}

// Guide is a row of guias
type Guide struct {
	ID         uuid.UUID
	PessoaID   uuid.UUID
	EnderecoID uuid.UUID
	Biografia  *string
}

// Credentials is the login lookup row. Password holds the bcrypt hash and
// never leaves the service layer.
type Credentials struct {
	ID       uuid.UUID  `db:"id"`
	Nome     string     `db:"nome"`
	Email    string     `db:"email"`
	CPF      string     `db:"cpf"`
	Telefone NullString `db:"telefone"`
	Password string     `db:"password"`
	Role     string     `db:"role"`
	IsActive bool       `db:"is_active"`
	Tipo     string     `db:"tipo"`
}

// UserSummary is one row of the admin user listing
type UserSummary struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Nome           string     `json:"nome" db:"nome"`
	Email          string     `json:"email" db:"email"`
	CPF            string     `json:"cpf" db:"cpf"`
	Telefone       NullString `json:"telefone" db:"telefone"`
	DataNascimento NullString `json:"data_nascimento" db:"data_nascimento"`
	Role           string     `json:"role" db:"role"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	Tipo           string     `json:"tipo" db:"tipo"`
	LastLogin      NullString `json:"last_login" db:"last_login"`
	CreatedAt      string     `json:"created_at" db:"created_at"`
}

// UserProfile is a single person with guide attributes and address joined in
type UserProfile struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	Nome              string      `json:"nome" db:"nome"`
	Email             string      `json:"email" db:"email"`
	CPF               string      `json:"cpf" db:"cpf"`
	Telefone          NullString  `json:"telefone" db:"telefone"`
	DataNascimento    NullString  `json:"data_nascimento" db:"data_nascimento"`
	Biografia         NullString  `json:"biografia" db:"biografia"`
	Role              string      `json:"role" db:"role"`
	Tipo              string      `json:"tipo" db:"tipo"`
	LastLogin         NullString  `json:"last_login" db:"last_login"`
	CreatedAt         string      `json:"created_at" db:"created_at"`
	AnosExperiencia   NullInt64   `json:"anos_experiencia" db:"anos_experiencia"`
	AvaliacaoMedia    NullFloat64 `json:"avaliacao_media" db:"avaliacao_media"`
	NumeroAvaliacoes  NullInt64   `json:"numero_avaliacoes" db:"numero_avaliacoes"`
	StatusVerificacao NullString  `json:"status_verificacao" db:"status_verificacao"`
	CEP               NullString  `json:"cep" db:"cep"`
	Pais              NullString  `json:"pais" db:"pais"`
	Estado            NullString  `json:"estado" db:"estado"`
	Cidade            NullString  `json:"cidade" db:"cidade"`
	Bairro            NullString  `json:"bairro" db:"bairro"`
	Rua               NullString  `json:"rua" db:"rua"`
	EnderecoNumero    NullString  `json:"endereco_numero" db:"endereco_numero"`
	Complemento       NullString  `json:"complemento" db:"complemento"`
}

// GuideLink identifies a person's guide and address rows
type GuideLink struct {
	GuiaID     uuid.UUID     `db:"id"`
	EnderecoID uuid.NullUUID `db:"endereco_id"`
}

// LoginUser is the profile returned on login, stripped of credential fields
type LoginUser struct {
	ID       uuid.UUID  `json:"id"`
	Nome     string     `json:"nome"`
	Email    string     `json:"email"`
	CPF      string     `json:"cpf"`
	Telefone NullString `json:"telefone"`
	Role     string     `json:"role"`
	Tipo     string     `json:"tipo"`
}

// LoginResult is the token plus the public profile
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      LoginUser `json:"user"`
}
