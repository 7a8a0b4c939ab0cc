package services

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagee/travel-backend/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeHasher makes hashes predictable without paying the bcrypt cost
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID uuid.UUID, email, role, tipo string) (string, error) {
	return "signed." + role + "." + userID.String(), nil
}

func (fakeTokens) Expiry() time.Duration { return time.Hour }

func userIdentity() *models.Identity {
	return &models.Identity{ID: uuid.New(), Nome: "Ana", Role: models.RoleUser, Tipo: models.TipoViajante, IsActive: true}
}

func adminIdentity() *models.Identity {
	return &models.Identity{ID: uuid.New(), Nome: "Root", Role: models.RoleAdmin, Tipo: models.TipoViajante, IsActive: true}
}

func assertKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
