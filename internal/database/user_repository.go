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

// tipoColumn derives "guia"/"viajante" from the presence of a guias row aliased g
const tipoColumn = `CASE WHEN g.id IS NOT NULL THEN 'guia' ELSE 'viajante' END AS tipo`

// UserRepository handles pessoas, auths, guias and enderecos
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a new user repository
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *UserRepository) WithTx(tx *sqlx.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

// EmailOrCPFExists checks whether a person already uses the email or CPF
func (r *UserRepository) EmailOrCPFExists(ctx context.Context, email, cpf string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pessoas WHERE email = $1 OR cpf = $2)`

	if err := sqlx.GetContext(ctx, r.db, &exists, query, email, cpf); err != nil {
		return false, fmt.Errorf("failed to check existing person: %w", err)
	}

	return exists, nil
}

// CreatePerson inserts a pessoas row
func (r *UserRepository) CreatePerson(ctx context.Context, p *models.Person) error {
	query := `
		INSERT INTO pessoas (id, nome, cpf, email, telefone, data_nascimento, biografia)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Nome, p.CPF, p.Email, p.Telefone, p.DataNascimento, p.Biografia,
	)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}

	return nil
}

// CreateAuth inserts the credential row for a person
func (r *UserRepository) CreateAuth(ctx context.Context, pessoaID uuid.UUID, passwordHash, role string) error {
	query := `
		INSERT INTO auths (id, pessoa_id, password, role, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), pessoaID, passwordHash, role); err != nil {
		return fmt.Errorf("failed to create auth: %w", err)
	}

	return nil
}

// CreateAddress inserts an enderecos row
func (r *UserRepository) CreateAddress(ctx context.Context, a *models.Address) error {
	query := `
		INSERT INTO enderecos (id, cep, pais, estado, cidade, bairro, rua, numero, complemento)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.CEP, a.Pais, a.Estado, a.Cidade, a.Bairro, a.Rua, a.Numero, a.Complemento,
	)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

// CreateGuide inserts a guias row with verification pending
func (r *UserRepository) CreateGuide(ctx context.Context, g *models.Guide) error {
	query := `
		INSERT INTO guias (id, pessoa_id, endereco_id, biografia, status_verificacao)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.PessoaID, g.EnderecoID, g.Biografia, models.VerificationPending,
	)
	if err != nil {
		return fmt.Errorf("failed to create guide: %w", err)
	}

	return nil
}

// GetCredentialsByEmail loads the login row for an email.
// Returns nil, nil when no person uses the email.
func (r *UserRepository) GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	var creds models.Credentials

	query := `
		SELECT p.id, p.nome, p.email, p.cpf, p.telefone,
		       a.password, a.role, a.is_active,
		       ` + tipoColumn + `
		FROM pessoas p
		JOIN auths a ON a.pessoa_id = p.id
		LEFT JOIN guias g ON g.pessoa_id = p.id
		WHERE p.email = $1
	`

	err := sqlx.GetContext(ctx, r.db, &creds, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credentials by email: %w", err)
	}

	return &creds, nil
}

// UpdateLastLogin stamps auths.last_login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, pessoaID uuid.UUID) error {
	query := `UPDATE auths SET last_login = NOW() WHERE pessoa_id = $1`

	if _, err := r.db.ExecContext(ctx, query, pessoaID); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

// GetIdentityByID loads the identity behind a token subject.
// Returns nil, nil when the person no longer exists.
func (r *UserRepository) GetIdentityByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	var identity models.Identity

	query := `
		SELECT p.id, p.nome, p.email, p.telefone, a.role, a.is_active,
		       ` + tipoColumn + `
		FROM pessoas p
		JOIN auths a ON a.pessoa_id = p.id
		LEFT JOIN guias g ON g.pessoa_id = p.id
		WHERE p.id = $1
	`

	err := sqlx.GetContext(ctx, r.db, &identity, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity by ID: %w", err)
	}

	return &identity, nil
}

// ListUsers returns every person with role, type and formatted timestamps, ordered by name
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users := []models.UserSummary{}

	query := `
		SELECT p.id, p.nome, p.email, p.cpf, p.telefone,
		       to_char(p.data_nascimento, 'DD/MM/YYYY') AS data_nascimento,
		       a.role, a.is_active,
		       ` + tipoColumn + `,
		       to_char(a.last_login, 'DD/MM/YYYY HH24:MI:SS') AS last_login,
		       to_char(p.created_at, 'DD/MM/YYYY HH24:MI:SS') AS created_at
		FROM pessoas p
		JOIN auths a ON a.pessoa_id = p.id
		LEFT JOIN guias g ON g.pessoa_id = p.id
		ORDER BY p.nome
	`

	if err := sqlx.SelectContext(ctx, r.db, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// GetProfileByID loads a person with guide attributes and address.
// Returns nil, nil when not found.
func (r *UserRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile

	query := `
		SELECT p.id, p.nome, p.email, p.cpf, p.telefone,
		       to_char(p.data_nascimento, 'DD/MM/YYYY') AS data_nascimento,
		       COALESCE(g.biografia, p.biografia) AS biografia,
		       a.role,
		       ` + tipoColumn + `,
		       to_char(a.last_login, 'DD/MM/YYYY HH24:MI:SS') AS last_login,
		       to_char(p.created_at, 'DD/MM/YYYY HH24:MI:SS') AS created_at,
		       g.anos_experiencia, g.avaliacao_media, g.numero_avaliacoes, g.status_verificacao,
		       e.cep, e.pais, e.estado, e.cidade, e.bairro, e.rua,
		       e.numero AS endereco_numero, e.complemento
		FROM pessoas p
		JOIN auths a ON a.pessoa_id = p.id
		LEFT JOIN guias g ON g.pessoa_id = p.id
		LEFT JOIN enderecos e ON e.id = g.endereco_id
		WHERE p.id = $1
	`

	err := sqlx.GetContext(ctx, r.db, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}

	return &profile, nil
}

// UpdatePerson applies the supplied profile fields to pessoas.
// Returns false without touching the database when nothing was supplied.
func (r *UserRepository) UpdatePerson(ctx context.Context, id uuid.UUID, req models.UpdateProfileRequest) (bool, error) {
	b := newUpdateBuilder("pessoas")
	if req.Nome != nil {
		b.set("nome", *req.Nome)
	}
	if req.Telefone != nil {
		b.set("telefone", *req.Telefone)
	}
	if req.DataNascimento != nil {
		b.set("data_nascimento", *req.DataNascimento)
	}
	if req.Biografia != nil {
		b.set("biografia", *req.Biografia)
	}
	if b.empty() {
		return false, nil
	}

	query, args := b.build("id", id, true)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("failed to update person: %w", err)
	}

	return true, nil
}

// GetGuideLink returns the guide and address ids for a person, or nil when the person is not a guide
func (r *UserRepository) GetGuideLink(ctx context.Context, pessoaID uuid.UUID) (*models.GuideLink, error) {
	var link models.GuideLink

	query := `SELECT id, endereco_id FROM guias WHERE pessoa_id = $1`

	err := sqlx.GetContext(ctx, r.db, &link, query, pessoaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get guide: %w", err)
	}

	return &link, nil
}

// UpdateGuideBiography sets guias.biografia
func (r *UserRepository) UpdateGuideBiography(ctx context.Context, guiaID uuid.UUID, biografia string) error {
	query := `UPDATE guias SET biografia = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, biografia, guiaID); err != nil {
		return fmt.Errorf("failed to update guide biography: %w", err)
	}

	return nil
}

// LinkGuideAddress points a guide at an address row
func (r *UserRepository) LinkGuideAddress(ctx context.Context, guiaID, enderecoID uuid.UUID) error {
	query := `UPDATE guias SET endereco_id = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, enderecoID, guiaID); err != nil {
		return fmt.Errorf("failed to link guide address: %w", err)
	}

	return nil
}

// UpdateAddress applies the supplied address fields.
// Returns false when the patch carried no fields.
func (r *UserRepository) UpdateAddress(ctx context.Context, enderecoID uuid.UUID, patch models.AddressPatch) (bool, error) {
	b := newUpdateBuilder("enderecos")
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"cep", patch.CEP},
		{"pais", patch.Pais},
		{"estado", patch.Estado},
		{"cidade", patch.Cidade},
		{"bairro", patch.Bairro},
		{"rua", patch.Rua},
		{"numero", patch.Numero},
		{"complemento", patch.Complemento},
	} {
		if f.value != nil {
			b.set(f.column, *f.value)
		}
	}
	if b.empty() {
		return false, nil
	}

	query, args := b.build("id", enderecoID, false)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("failed to update address: %w", err)
	}

	return true, nil
}
