package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagee/travel-backend/internal/database"
	"github.com/voyagee/travel-backend/internal/models"
)

func newTestDestinationService(t *testing.T) (*DestinationService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	return NewDestinationService(database.NewDestinationRepository(db)), mock
}

func newTestTourService(t *testing.T) (*TourService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	return NewTourService(database.NewTourRepository(db), database.NewDestinationRepository(db)), mock
}

func destinationRow(id uuid.UUID, owner interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "nome", "estado", "cidade", "criador_id"}).
		AddRow(id.String(), "Ponta Negra", "RN", "Natal", owner)
}

func TestDestinationService_Create(t *testing.T) {
	ctx := context.Background()
	creator := userIdentity()

	t.Run("state must be two letters", func(t *testing.T) {
		svc, mock := newTestDestinationService(t)

		_, err := svc.Create(ctx, creator, models.CreateDestinationRequest{Nome: "Ponta Negra", Cidade: "Natal", Estado: "RNN"})
		assertKind(t, err, KindValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("coordinates out of range", func(t *testing.T) {
		svc, _ := newTestDestinationService(t)
		lat := 91.0

		_, err := svc.Create(ctx, creator, models.CreateDestinationRequest{Nome: "Ponta Negra", Cidade: "Natal", Estado: "rn", Latitude: &lat})
		assertKind(t, err, KindValidation)
	})

	t.Run("duplicate name in the same city", func(t *testing.T) {
		svc, mock := newTestDestinationService(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM destinos WHERE nome = $1`)).
			WithArgs("Ponta Negra", "Natal", "RN", nil).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := svc.Create(ctx, creator, models.CreateDestinationRequest{Nome: " Ponta Negra ", Cidade: "Natal", Estado: "rn"})
		assertKind(t, err, KindConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation from a racing insert", func(t *testing.T) {
		svc, mock := newTestDestinationService(t)
		mock.ExpectQuery("FROM destinos").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("INSERT INTO destinos").WillReturnError(&pq.Error{Code: "23505"})

		_, err := svc.Create(ctx, creator, models.CreateDestinationRequest{Nome: "Ponta Negra", Cidade: "Natal", Estado: "RN"})
		assertKind(t, err, KindConflict)
	})
}

func TestDestinationService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	owner := userIdentity()

	t.Run("non-owner is forbidden", func(t *testing.T) {
		svc, mock := newTestDestinationService(t)
		mock.ExpectQuery("FROM destinos d").WithArgs(id).WillReturnRows(destinationRow(id, uuid.New().String()))

		_, err := svc.Update(ctx, owner, id, models.UpdateDestinationRequest{Nome: strPtr("Genipabu")})
		assertKind(t, err, KindForbidden)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("legacy row without creator is admin only", func(t *testing.T) {
		svc, mock := newTestDestinationService(t)
		mock.ExpectQuery("FROM destinos d").WithArgs(id).WillReturnRows(destinationRow(id, nil))

		_, err := svc.Update(ctx, owner, id, models.UpdateDestinationRequest{Nome: strPtr("Genipabu")})
		assertKind(t, err, KindForbidden)
	})

	t.Run("empty patch returns current row", func(t *testing.T) {
		svc, mock := newTestDestinationService(t)
		mock.ExpectQuery("FROM destinos d").WithArgs(id).WillReturnRows(destinationRow(id, owner.ID.String()))

		destination, err := svc.Update(ctx, owner, id, models.UpdateDestinationRequest{})
		require.NoError(t, err)
		assert.Equal(t, "Ponta Negra", destination.Nome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rename checks uniqueness excluding itself", func(t *testing.T) {
		svc, mock := newTestDestinationService(t)
		mock.ExpectQuery("FROM destinos d").WithArgs(id).WillReturnRows(destinationRow(id, owner.ID.String()))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM destinos WHERE nome = $1`)).
			WithArgs("Genipabu", "Natal", "RN", id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE destinos SET nome = $1, updated_at = NOW() WHERE id = $2`)).
			WithArgs("Genipabu", id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM destinos d").WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "estado", "cidade", "criador_id"}).
				AddRow(id.String(), "Genipabu", "RN", "Natal", owner.ID.String()))

		destination, err := svc.Update(ctx, owner, id, models.UpdateDestinationRequest{Nome: strPtr("Genipabu")})
		require.NoError(t, err)
		assert.Equal(t, "Genipabu", destination.Nome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDestinationService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("blocked while tours reference it", func(t *testing.T) {
		svc, mock := newTestDestinationService(t)
		mock.ExpectQuery("FROM destinos d").WithArgs(id).WillReturnRows(destinationRow(id, nil))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM passeios WHERE destino_id = $1)`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := svc.Delete(ctx, adminIdentity(), id)
		assertKind(t, err, KindConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing destination", func(t *testing.T) {
		svc, mock := newTestDestinationService(t)
		mock.ExpectQuery("FROM destinos d").WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "estado", "cidade", "criador_id"}))

		err := svc.Delete(ctx, adminIdentity(), id)
		assertKind(t, err, KindNotFound)
	})
}

func TestTourService_Create(t *testing.T) {
	ctx := context.Background()
	creator := userIdentity()
	destinationID := uuid.New()
	preco, duracao := 150.0, 4.0

	valid := func() models.CreateTourRequest {
		return models.CreateTourRequest{
			Nome:             "Buggy nas dunas",
			DestinoID:        &destinationID,
			Preco:            &preco,
			DuracaoHoras:     &duracao,
			NivelDificuldade: models.DifficultyModerate,
		}
	}

	t.Run("invalid difficulty", func(t *testing.T) {
		svc, _ := newTestTourService(t)
		req := valid()
		req.NivelDificuldade = "radical"

		_, err := svc.Create(ctx, creator, req)
		assertKind(t, err, KindValidation)
	})

	t.Run("unknown destination", func(t *testing.T) {
		svc, mock := newTestTourService(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM destinos WHERE id = $1)`)).
			WithArgs(destinationID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := svc.Create(ctx, creator, valid())
		assertKind(t, err, KindNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTourService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	owner := userIdentity()

	tourRow := func(creator uuid.UUID) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "nome", "criador_id"}).AddRow(id.String(), "Buggy", creator.String())
	}

	t.Run("empty patch from owner", func(t *testing.T) {
		svc, mock := newTestTourService(t)
		mock.ExpectQuery("FROM passeios ps").WithArgs(id).WillReturnRows(tourRow(owner.ID))

		_, err := svc.Update(ctx, owner, id, models.UpdateTourRequest{})
		assertKind(t, err, KindValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-owner cannot update", func(t *testing.T) {
		svc, mock := newTestTourService(t)
		mock.ExpectQuery("FROM passeios ps").WithArgs(id).WillReturnRows(tourRow(uuid.New()))

		preco := 99.0
		_, err := svc.Update(ctx, owner, id, models.UpdateTourRequest{Preco: &preco})
		assertKind(t, err, KindForbidden)
	})

	t.Run("delete blocked by itineraries", func(t *testing.T) {
		svc, mock := newTestTourService(t)
		mock.ExpectQuery("FROM passeios ps").WithArgs(id).WillReturnRows(tourRow(owner.ID))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM roteiros WHERE passeio_id = $1)`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := svc.Delete(ctx, owner, id)
		assertKind(t, err, KindConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner deletes", func(t *testing.T) {
		svc, mock := newTestTourService(t)
		mock.ExpectQuery("FROM passeios ps").WithArgs(id).WillReturnRows(tourRow(owner.ID))
		mock.ExpectQuery("FROM roteiros").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM passeios WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, svc.Delete(ctx, owner, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
