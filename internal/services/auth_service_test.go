package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/voyagee/travel-backend/internal/database"
	"github.com/voyagee/travel-backend/internal/models"
)

var credentialColumns = []string{"id", "nome", "email", "cpf", "telefone", "password", "role", "is_active", "tipo"}

func newTestAuthService(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	logger := quietLogger()
	svc := NewAuthService(db, database.NewUserRepository(db), fakeHasher{}, fakeTokens{}, NewAuditService(logger, true), logger)
	return svc, mock
}

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Name:     "  Ana Souza ",
		Email:    "Ana@Example.com",
		CPF:      "529.982.247-25",
		Password: "segredo1",
	}
}

func expectEmailOrCPFCheck(mock sqlmock.Sqlmock, exists bool) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM pessoas WHERE email = $1 OR cpf = $2)`)).
		WithArgs("ana@example.com", "52998224725").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates traveller with user role", func(t *testing.T) {
		svc, mock := newTestAuthService(t)

		expectEmailOrCPFCheck(mock, false)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pessoas").
			WithArgs(sqlmock.AnyArg(), "Ana Souza", "52998224725", "ana@example.com", nil, nil, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO auths").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "hashed:segredo1", models.RoleUser).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := svc.Register(ctx, nil, validRegistration(), RequestMeta{IPAddress: "10.0.0.1"})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guide gets address and pending guide rows", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		req := validRegistration()
		req.UserType = "guia"
		req.City = strPtr("Natal")
		req.State = strPtr("RN")

		expectEmailOrCPFCheck(mock, false)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pessoas").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO auths").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "hashed:segredo1", models.RoleGuide).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO enderecos").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO guias").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), nil, models.VerificationPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := svc.Register(ctx, nil, req, RequestMeta{})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email or cpf is a conflict", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		expectEmailOrCPFCheck(mock, true)

		err := svc.Register(ctx, nil, validRegistration(), RequestMeta{})
		assertKind(t, err, KindConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation inside the transaction is a conflict", func(t *testing.T) {
		svc, mock := newTestAuthService(t)

		expectEmailOrCPFCheck(mock, false)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pessoas").WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := svc.Register(ctx, nil, validRegistration(), RequestMeta{})
		assertKind(t, err, KindConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("admin type from anonymous caller rolls back", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		req := validRegistration()
		req.UserType = "admin"

		expectEmailOrCPFCheck(mock, false)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pessoas").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err := svc.Register(ctx, nil, req, RequestMeta{})
		assertKind(t, err, KindForbidden)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("admin caller may create admin", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		req := validRegistration()
		req.UserType = "admin"

		expectEmailOrCPFCheck(mock, false)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pessoas").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO auths").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "hashed:segredo1", models.RoleAdmin).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := svc.Register(ctx, adminIdentity(), req, RequestMeta{})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects invalid input before touching the database", func(t *testing.T) {
		cases := map[string]func(r *models.RegisterRequest){
			"bad cpf":       func(r *models.RegisterRequest) { r.CPF = "123.456.789-00" },
			"short pass":    func(r *models.RegisterRequest) { r.Password = "123" },
			"blank email":   func(r *models.RegisterRequest) { r.Email = "   " },
			"long pass":     func(r *models.RegisterRequest) { r.Password = strings.Repeat("a", 73) },
			"unknown type":  func(r *models.RegisterRequest) { r.UserType = "pirata" },
			"blank name":    func(r *models.RegisterRequest) { r.Name = "   " },
			"bad birthdate": func(r *models.RegisterRequest) { r.DataNascimento = strPtr("31/12/1990") },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				svc, mock := newTestAuthService(t)
				req := validRegistration()
				mutate(&req)

				err := svc.Register(ctx, nil, req, RequestMeta{})
				assertKind(t, err, KindValidation)
				assert.NoError(t, mock.ExpectationsWereMet())
			})
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	credentialRow := func(password string, active bool) *sqlmock.Rows {
		return sqlmock.NewRows(credentialColumns).
			AddRow(userID.String(), "Ana", "ana@example.com", "52998224725", nil, password, models.RoleUser, active, models.TipoViajante)
	}

	t.Run("success issues token and stamps last login", func(t *testing.T) {
		svc, mock := newTestAuthService(t)

		mock.ExpectQuery("FROM pessoas p").WithArgs("ana@example.com").WillReturnRows(credentialRow("hashed:segredo1", true))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE auths SET last_login = NOW() WHERE pessoa_id = $1`)).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		result, err := svc.Login(ctx, models.LoginRequest{Email: " ANA@example.com", Password: "segredo1"}, RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, "signed.user."+userID.String(), result.Token)
		assert.Equal(t, userID, result.User.ID)
		assert.Equal(t, models.TipoViajante, result.User.Tipo)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("last login failure does not block login", func(t *testing.T) {
		svc, mock := newTestAuthService(t)

		mock.ExpectQuery("FROM pessoas p").WillReturnRows(credentialRow("hashed:segredo1", true))
		mock.ExpectExec("UPDATE auths").WillReturnError(errors.New("connection reset"))

		result, err := svc.Login(ctx, models.LoginRequest{Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		cases := map[string]*sqlmock.Rows{
			"unknown email":  sqlmock.NewRows(credentialColumns),
			"wrong password": credentialRow("hashed:outra", true),
			"inactive":       credentialRow("hashed:segredo1", false),
		}

		var messages []string
		for name, rows := range cases {
			t.Run(name, func(t *testing.T) {
				svc, mock := newTestAuthService(t)
				mock.ExpectQuery("FROM pessoas p").WillReturnRows(rows)

				_, err := svc.Login(ctx, models.LoginRequest{Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
				assertKind(t, err, KindInvalidCredentials)

				var se *ServiceError
				require.True(t, errors.As(err, &se))
				messages = append(messages, se.Message)
				assert.NoError(t, mock.ExpectationsWereMet())
			})
		}

		require.Len(t, messages, 3)
		for _, m := range messages {
			assert.Equal(t, msgInvalidCredentials, m)
		}
	})
}

func TestAuthService_ResolveIdentity(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	columns := []string{"id", "nome", "email", "telefone", "role", "is_active", "tipo"}

	t.Run("active person", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		mock.ExpectQuery("FROM pessoas p").WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(id.String(), "Ana", "ana@example.com", nil, models.RoleGuide, true, models.TipoGuia))

		identity, err := svc.ResolveIdentity(ctx, id)
		require.NoError(t, err)
		assert.True(t, identity.IsGuide())
		assert.False(t, identity.IsAdmin())
	})

	t.Run("deleted person", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		mock.ExpectQuery("FROM pessoas p").WithArgs(id).WillReturnRows(sqlmock.NewRows(columns))

		_, err := svc.ResolveIdentity(ctx, id)
		assertKind(t, err, KindUnauthenticated)
	})

	t.Run("inactive person", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		mock.ExpectQuery("FROM pessoas p").WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(id.String(), "Ana", "ana@example.com", nil, models.RoleUser, false, models.TipoViajante))

		_, err := svc.ResolveIdentity(ctx, id)
		assertKind(t, err, KindUnauthenticated)
	})
}

func TestAuthService_ListUsersRequiresAdmin(t *testing.T) {
	svc, mock := newTestAuthService(t)

	_, err := svc.ListUsers(context.Background(), userIdentity())
	assertKind(t, err, KindForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_GetUserOtherPersonForbidden(t *testing.T) {
	svc, mock := newTestAuthService(t)

	_, err := svc.GetUser(context.Background(), userIdentity(), uuid.New())
	assertKind(t, err, KindForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_UpdateProfileEmptyPatch(t *testing.T) {
	svc, mock := newTestAuthService(t)
	identity := userIdentity()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM pessoas p").WithArgs(identity.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "email", "cpf", "role", "tipo", "created_at"}).
			AddRow(identity.ID.String(), "Ana", "ana@example.com", "52998224725", models.RoleUser, models.TipoViajante, "01/01/2025 10:00:00"))
	mock.ExpectCommit()

	profile, err := svc.UpdateProfile(context.Background(), identity, models.UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.Nome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("segredo1")
	require.NoError(t, err)
	assert.NotEqual(t, "segredo1", hash)
	assert.NoError(t, hasher.Compare(hash, "segredo1"))
	assert.Error(t, hasher.Compare(hash, "errada"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
}

func TestAuthService_RegisterPasswordOverBcryptLimit(t *testing.T) {
	db, mock := newMockDB(t)
	logger := quietLogger()
	svc := NewAuthService(db, database.NewUserRepository(db), NewBcryptHasher(bcrypt.MinCost), fakeTokens{}, NewAuditService(logger, false), logger)

	req := validRegistration()
	req.Password = strings.Repeat("a", 80)

	err := svc.Register(context.Background(), nil, req, RequestMeta{})
	assertKind(t, err, KindValidation)
	assert.NoError(t, mock.ExpectationsWereMet())

	// 72 bytes is still accepted by bcrypt
	req.Password = strings.Repeat("a", 72)
	expectEmailOrCPFCheck(mock, false)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pessoas").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO auths").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Register(context.Background(), nil, req, RequestMeta{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_RegisterAuditsDeniedAdminGrant(t *testing.T) {
	db, mock := newMockDB(t)
	logger, hook := test.NewNullLogger()
	svc := NewAuthService(db, database.NewUserRepository(db), fakeHasher{}, fakeTokens{}, NewAuditService(logger, true), logger)

	req := validRegistration()
	req.UserType = "admin"
	requester := userIdentity()

	expectEmailOrCPFCheck(mock, false)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pessoas").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := svc.Register(context.Background(), requester, req, RequestMeta{IPAddress: "10.0.0.9"})
	assertKind(t, err, KindForbidden)

	var denied *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Data["action"] == "admin_grant_denied" {
			denied = entry
		}
	}
	require.NotNil(t, denied)
	assert.Equal(t, logrus.WarnLevel, denied.Level)
	assert.Equal(t, requester.ID.String(), denied.Data["requester_id"])
	assert.Equal(t, "ana@example.com", denied.Data["email"])
	assert.Equal(t, "10.0.0.9", denied.Data["ip"])
}

// countingHasher records how many comparisons a login performed
type countingHasher struct {
	fakeHasher
	compares int
}

func (h *countingHasher) Compare(hash, password string) error {
	h.compares++
	return h.fakeHasher.Compare(hash, password)
}

func TestAuthService_LoginComparesOnEveryFailurePath(t *testing.T) {
	userID := uuid.New()

	cases := map[string]*sqlmock.Rows{
		"unknown email": sqlmock.NewRows(credentialColumns),
		"inactive": sqlmock.NewRows(credentialColumns).
			AddRow(userID.String(), "Ana", "ana@example.com", "52998224725", nil, "hashed:segredo1", models.RoleUser, false, models.TipoViajante),
		"wrong password": sqlmock.NewRows(credentialColumns).
			AddRow(userID.String(), "Ana", "ana@example.com", "52998224725", nil, "hashed:outra", models.RoleUser, true, models.TipoViajante),
	}

	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			db, mock := newMockDB(t)
			logger := quietLogger()
			hasher := &countingHasher{}
			svc := NewAuthService(db, database.NewUserRepository(db), hasher, fakeTokens{}, NewAuditService(logger, false), logger)

			mock.ExpectQuery("FROM pessoas p").WillReturnRows(rows)

			_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
			assertKind(t, err, KindInvalidCredentials)
			assert.Equal(t, 1, hasher.compares)
		})
	}
}

func guideIdentity() *models.Identity {
	return &models.Identity{ID: uuid.New(), Nome: "Bruno", Role: models.RoleGuide, Tipo: models.TipoGuia, IsActive: true}
}

func expectProfileRead(mock sqlmock.Sqlmock, identity *models.Identity) {
	mock.ExpectQuery("FROM pessoas p").WithArgs(identity.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "email", "cpf", "role", "tipo", "created_at"}).
			AddRow(identity.ID.String(), identity.Nome, "perfil@example.com", "52998224725", identity.Role, identity.Tipo, "01/01/2025 10:00:00"))
}

func TestAuthService_UpdateProfileGuide(t *testing.T) {
	ctx := context.Background()

	t.Run("guide with address updates biography and only supplied address columns", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		identity := guideIdentity()
		guiaID, enderecoID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE pessoas SET biografia = $1, updated_at = NOW() WHERE id = $2")).
			WithArgs("Guia de trilhas", identity.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, endereco_id FROM guias WHERE pessoa_id = $1")).
			WithArgs(identity.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "endereco_id"}).AddRow(guiaID.String(), enderecoID.String()))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE guias SET biografia = $1 WHERE id = $2")).
			WithArgs("Guia de trilhas", guiaID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE enderecos SET cidade = $1, bairro = $2 WHERE id = $3")).
			WithArgs("Natal", "Ponta Negra", enderecoID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectProfileRead(mock, identity)
		mock.ExpectCommit()

		profile, err := svc.UpdateProfile(ctx, identity, models.UpdateProfileRequest{
			Biografia: strPtr("Guia de trilhas"),
			Endereco:  &models.AddressPatch{Cidade: strPtr("Natal"), Bairro: strPtr("Ponta Negra")},
		})
		require.NoError(t, err)
		assert.Equal(t, identity.ID, profile.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guide without address gets one created and linked", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		identity := guideIdentity()
		guiaID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, endereco_id FROM guias WHERE pessoa_id = $1")).
			WithArgs(identity.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "endereco_id"}).AddRow(guiaID.String(), nil))
		mock.ExpectExec("INSERT INTO enderecos").
			WithArgs(sqlmock.AnyArg(), "59000-000", nil, "RN", "Natal", nil, nil, nil, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE guias SET endereco_id = $1 WHERE id = $2")).
			WithArgs(sqlmock.AnyArg(), guiaID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectProfileRead(mock, identity)
		mock.ExpectCommit()

		_, err := svc.UpdateProfile(ctx, identity, models.UpdateProfileRequest{
			Endereco: &models.AddressPatch{CEP: strPtr("59000-000"), Estado: strPtr("RN"), Cidade: strPtr("Natal")},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("traveller address is ignored and guide tables untouched", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		identity := userIdentity()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE pessoas SET nome = $1, updated_at = NOW() WHERE id = $2")).
			WithArgs("Ana Lima", identity.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectProfileRead(mock, identity)
		mock.ExpectCommit()

		_, err := svc.UpdateProfile(ctx, identity, models.UpdateProfileRequest{
			Nome:     strPtr(" Ana Lima "),
			Endereco: &models.AddressPatch{Cidade: strPtr("Natal")},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed address write rolls back", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		identity := guideIdentity()
		guiaID, enderecoID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, endereco_id FROM guias WHERE pessoa_id = $1")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "endereco_id"}).AddRow(guiaID.String(), enderecoID.String()))
		mock.ExpectExec("UPDATE enderecos").WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := svc.UpdateProfile(ctx, identity, models.UpdateProfileRequest{
			Endereco: &models.AddressPatch{Rua: strPtr("Rua das Dunas")},
		})
		assertKind(t, err, KindInternal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
