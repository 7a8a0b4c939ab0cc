package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/voyagee/travel-backend/internal/database"
	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/pkg/validator"
)

const (
	msgInvalidCredentials = "Email ou senha incorretos"
	minPasswordLength     = 6
	maxPasswordLength     = 72 // bcrypt input limit, in bytes
	dummyPassword         = "voyagee-timing-equalizer"
)

// TokenIssuer signs bearer tokens for authenticated identities
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, email, role, tipo string) (string, error)
	Expiry() time.Duration
}

// AuthService handles registration, login and profile operations
type AuthService struct {
	db     database.DB
	users  *database.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	phones *validator.PhoneValidator
	audit  *AuditService
	logger *logrus.Logger

	// dummyHash is compared against when no usable credential exists,
	// so failed logins cost one hash comparison on every path
	dummyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(
	db database.DB,
	users *database.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	audit *AuditService,
	logger *logrus.Logger,
) *AuthService {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		logger.WithError(err).Warn("Failed to prepare dummy password hash")
	}

	return &AuthService{
		db:        db,
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		phones:    validator.NewPhoneValidator(),
		audit:     audit,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

// Register creates a person with credentials, plus address and guide rows
// for guides, in a single transaction. requester is the authenticated caller
// or nil; only an admin requester may create an admin account.
func (s *AuthService) Register(ctx context.Context, requester *models.Identity, req models.RegisterRequest, meta RequestMeta) (err error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer func() { endSpan(span, err) }()

	person, userType, err := s.validateRegistration(req)
	if err != nil {
		return err
	}

	exists, err := s.users.EmailOrCPFExists(ctx, person.Email, person.CPF)
	if err != nil {
		return internalError(err)
	}
	if exists {
		s.audit.LogRegistration(nil, person.Email, userType, false, "duplicate email or cpf", meta)
		return conflictError("Email ou CPF já cadastrado")
	}

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		users := s.users.WithTx(tx)

		if err := users.CreatePerson(ctx, person); err != nil {
			return translateWriteError(err, "Email ou CPF já cadastrado")
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return internalError(fmt.Errorf("failed to hash password: %w", err))
		}

		role, err := resolveRole(userType, requester)
		if err != nil {
			return err
		}

		if err := users.CreateAuth(ctx, person.ID, hash, role); err != nil {
			return internalError(err)
		}

		if userType != models.UserTypeGuia {
			return nil
		}

		address := &models.Address{
			ID:          uuid.New(),
			CEP:         req.ZipCode,
			Pais:        req.Country,
			Estado:      req.State,
			Cidade:      req.City,
			Bairro:      req.Bairro,
			Rua:         req.StreetAddress,
			Numero:      req.Number,
			Complemento: req.Complement,
		}
		if err := users.CreateAddress(ctx, address); err != nil {
			return internalError(err)
		}

		guide := &models.Guide{
			ID:         uuid.New(),
			PessoaID:   person.ID,
			EnderecoID: address.ID,
			Biografia:  req.Biografia,
		}
		if err := users.CreateGuide(ctx, guide); err != nil {
			return internalError(err)
		}

		return nil
	})
	if err != nil {
		if userType == models.UserTypeAdmin && KindOf(err) == KindForbidden {
			s.audit.LogAdminGrantDenied(requester, person.Email, meta)
		}
		s.audit.LogRegistration(nil, person.Email, userType, false, string(KindOf(err)), meta)
		return err
	}

	s.audit.LogRegistration(&person.ID, person.Email, userType, true, "", meta)
	return nil
}

func (s *AuthService) validateRegistration(req models.RegisterRequest) (*models.Person, string, error) {
	userType := strings.ToLower(strings.TrimSpace(req.UserType))
	if userType == "" {
		userType = models.UserTypeViajante
	}
	if userType != models.UserTypeViajante && userType != models.UserTypeGuia && userType != models.UserTypeAdmin {
		return nil, "", validationError("Tipo de usuário inválido")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, "", validationError("Nome é obrigatório")
	}

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, "", validationError("Email é obrigatório")
	}

	if len(req.Password) < minPasswordLength {
		return nil, "", validationError(fmt.Sprintf("A senha deve ter pelo menos %d caracteres", minPasswordLength))
	}
	if len(req.Password) > maxPasswordLength {
		return nil, "", validationError(fmt.Sprintf("A senha deve ter no máximo %d bytes", maxPasswordLength))
	}

	cpf, err := validator.NormalizeCPF(req.CPF)
	if err != nil {
		return nil, "", validationError("CPF inválido")
	}

	person := &models.Person{
		ID:        uuid.New(),
		Nome:      name,
		CPF:       cpf,
		Email:     email,
		Biografia: req.Biografia,
	}

	if strings.TrimSpace(req.Phone) != "" {
		phone, err := s.phones.Validate(req.Phone)
		if err != nil {
			return nil, "", validationError("Telefone inválido")
		}
		person.Telefone = &phone
	}

	if req.DataNascimento != nil && *req.DataNascimento != "" {
		if _, err := validator.ParseDate(*req.DataNascimento); err != nil {
			return nil, "", validationError("Data de nascimento inválida, use AAAA-MM-DD")
		}
		person.DataNascimento = req.DataNascimento
	}

	return person, userType, nil
}

// Login verifies credentials and issues a token. Unknown email, inactive
// account and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, meta RequestMeta) (result *models.LoginResult, err error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer func() { endSpan(span, err) }()

	invalid := &ServiceError{Kind: KindInvalidCredentials, Message: msgInvalidCredentials}
	email := normalizeEmail(req.Email)

	creds, err := s.users.GetCredentialsByEmail(ctx, email)
	if err != nil {
		return nil, internalError(err)
	}
	if creds == nil {
		_ = s.hasher.Compare(s.dummyHash, req.Password)
		s.audit.LogLogin(nil, email, false, "unknown email", meta)
		return nil, invalid
	}
	if !creds.IsActive {
		_ = s.hasher.Compare(creds.Password, req.Password)
		s.audit.LogLogin(&creds.ID, email, false, "inactive account", meta)
		return nil, invalid
	}
	if err := s.hasher.Compare(creds.Password, req.Password); err != nil {
		s.audit.LogLogin(&creds.ID, email, false, "wrong password", meta)
		return nil, invalid
	}

	if err := s.users.UpdateLastLogin(ctx, creds.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", creds.ID).Warn("Failed to update last login")
	}

	token, err := s.tokens.GenerateToken(creds.ID, creds.Email, creds.Role, creds.Tipo)
	if err != nil {
		return nil, internalError(err)
	}

	s.audit.LogLogin(&creds.ID, email, true, "", meta)

	return &models.LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokens.Expiry()),
		User: models.LoginUser{
			ID:       creds.ID,
			Nome:     creds.Nome,
			Email:    creds.Email,
			CPF:      creds.CPF,
			Telefone: creds.Telefone,
			Role:     creds.Role,
			Tipo:     creds.Tipo,
		},
	}, nil
}

// ResolveIdentity reloads the person behind a verified token
func (s *AuthService) ResolveIdentity(ctx context.Context, userID uuid.UUID) (identity *models.Identity, err error) {
	ctx, span := tracer.Start(ctx, "AuthService.ResolveIdentity")
	defer func() { endSpan(span, err) }()

	identity, err = s.users.GetIdentityByID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if identity == nil {
		return nil, &ServiceError{Kind: KindUnauthenticated, Message: "Usuário não encontrado"}
	}
	if !identity.IsActive {
		return nil, &ServiceError{Kind: KindUnauthenticated, Message: "Conta desativada"}
	}

	return identity, nil
}

// ListUsers returns every person; callers must be admin
func (s *AuthService) ListUsers(ctx context.Context, identity *models.Identity) (users []models.UserSummary, err error) {
	ctx, span := tracer.Start(ctx, "AuthService.ListUsers")
	defer func() { endSpan(span, err) }()

	if !identity.IsAdmin() {
		return nil, forbiddenError("Acesso negado. Apenas administradores.")
	}

	users, err = s.users.ListUsers(ctx)
	if err != nil {
		return nil, internalError(err)
	}

	return users, nil
}

// GetUser returns a profile; only the person themselves or an admin may read it
func (s *AuthService) GetUser(ctx context.Context, identity *models.Identity, id uuid.UUID) (profile *models.UserProfile, err error) {
	ctx, span := tracer.Start(ctx, "AuthService.GetUser")
	defer func() { endSpan(span, err) }()

	if !CanViewProfile(identity, id) {
		return nil, forbiddenError("Você não tem permissão para ver este usuário")
	}

	profile, err = s.users.GetProfileByID(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}
	if profile == nil {
		return nil, notFoundError("Usuário não encontrado")
	}

	return profile, nil
}

// UpdateProfile applies the allow-listed profile fields of the caller.
// Guides may also change their guide biography and address.
// An empty request changes nothing and returns the current profile.
func (s *AuthService) UpdateProfile(ctx context.Context, identity *models.Identity, req models.UpdateProfileRequest) (profile *models.UserProfile, err error) {
	ctx, span := tracer.Start(ctx, "AuthService.UpdateProfile")
	defer func() { endSpan(span, err) }()

	if err := s.normalizeProfilePatch(&req); err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		users := s.users.WithTx(tx)

		if _, err := users.UpdatePerson(ctx, identity.ID, req); err != nil {
			return internalError(err)
		}

		if identity.IsGuide() && (req.Biografia != nil || req.Endereco != nil) {
			if err := s.updateGuideProfile(ctx, users, identity.ID, req); err != nil {
				return err
			}
		}

		current, err := users.GetProfileByID(ctx, identity.ID)
		if err != nil {
			return internalError(err)
		}
		if current == nil {
			return notFoundError("Usuário não encontrado")
		}
		profile = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *AuthService) updateGuideProfile(ctx context.Context, users *database.UserRepository, pessoaID uuid.UUID, req models.UpdateProfileRequest) error {
	link, err := users.GetGuideLink(ctx, pessoaID)
	if err != nil {
		return internalError(err)
	}
	if link == nil {
		return nil
	}

	if req.Biografia != nil {
		if err := users.UpdateGuideBiography(ctx, link.GuiaID, *req.Biografia); err != nil {
			return internalError(err)
		}
	}

	if req.Endereco == nil {
		return nil
	}

	if link.EnderecoID.Valid {
		if _, err := users.UpdateAddress(ctx, link.EnderecoID.UUID, *req.Endereco); err != nil {
			return internalError(err)
		}
		return nil
	}

	address := &models.Address{
		ID:          uuid.New(),
		CEP:         req.Endereco.CEP,
		Pais:        req.Endereco.Pais,
		Estado:      req.Endereco.Estado,
		Cidade:      req.Endereco.Cidade,
		Bairro:      req.Endereco.Bairro,
		Rua:         req.Endereco.Rua,
		Numero:      req.Endereco.Numero,
		Complemento: req.Endereco.Complemento,
	}
	if err := users.CreateAddress(ctx, address); err != nil {
		return internalError(err)
	}
	if err := users.LinkGuideAddress(ctx, link.GuiaID, address.ID); err != nil {
		return internalError(err)
	}

	return nil
}

func (s *AuthService) normalizeProfilePatch(req *models.UpdateProfileRequest) error {
	if req.Nome != nil {
		nome := strings.TrimSpace(*req.Nome)
		if nome == "" {
			return validationError("Nome não pode ser vazio")
		}
		req.Nome = &nome
	}
	if req.Telefone != nil && *req.Telefone != "" {
		phone, err := s.phones.Validate(*req.Telefone)
		if err != nil {
			return validationError("Telefone inválido")
		}
		req.Telefone = &phone
	}
	if req.DataNascimento != nil {
		if _, err := validator.ParseDate(*req.DataNascimento); err != nil {
			return validationError("Data de nascimento inválida, use AAAA-MM-DD")
		}
	}
	return nil
}

// normalizeEmail trims and lower-cases; syntax is checked by the request binding
func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// translateWriteError maps a unique violation to Conflict and anything else to Internal
func translateWriteError(err error, conflictMessage string) error {
	if database.IsUniqueViolation(err) {
		return &ServiceError{Kind: KindConflict, Message: conflictMessage, Err: err}
	}
	return internalError(err)
}
