package postgres

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
)

func newTestRepository(t *testing.T) (*ProfileRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewProfileRepository(mock, slog.Default()), mock
}

func TestProfileRepository_Create(t *testing.T) {
	t.Run("inserts the profile row", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		identity := &domain.Identity{
			ID:          "subject-123",
			DisplayName: "Test User",
			Email:       "test@example.com",
			Role:        domain.RoleContributor,
			CreatedAt:   time.Now(),
		}

		mock.ExpectExec("INSERT INTO profiles").
			WithArgs(identity.ID, identity.DisplayName, identity.Email,
				string(identity.Role), identity.AvatarURL, identity.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(context.Background(), identity))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("surfaces database errors", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		mock.ExpectExec("INSERT INTO profiles").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(assert.AnError)

		err := repo.Create(context.Background(), &domain.Identity{
			ID:          "subject-123",
			DisplayName: "Test User",
			Email:       "test@example.com",
			Role:        domain.RoleContributor,
		})
		assert.Error(t, err)
	})
}

func TestProfileRepository_GetBySubjectID(t *testing.T) {
	columns := []string{"subject_id", "display_name", "email", "role", "avatar_url", "created_at"}

	t.Run("resolves the profile row", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		createdAt := time.Now().Add(-48 * time.Hour)
		mock.ExpectQuery("SELECT (.+) FROM profiles").
			WithArgs("subject-123").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("subject-123", "Test User", "test@example.com", "manager", (*string)(nil), createdAt))

		identity, err := repo.GetBySubjectID(context.Background(), "subject-123")
		require.NoError(t, err)
		assert.Equal(t, "subject-123", identity.ID)
		assert.Equal(t, "Test User", identity.DisplayName)
		assert.Equal(t, domain.RoleManager, identity.Role)
		assert.WithinDuration(t, createdAt, identity.CreatedAt, time.Second)
	})

	t.Run("missing row maps to the fetch failure sentinel", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		mock.ExpectQuery("SELECT (.+) FROM profiles").
			WithArgs("subject-404").
			WillReturnError(pgx.ErrNoRows)

		identity, err := repo.GetBySubjectID(context.Background(), "subject-404")
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, domain.ErrProfileFetchFailure)
	})

	t.Run("surfaces database errors", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		mock.ExpectQuery("SELECT (.+) FROM profiles").
			WithArgs("subject-123").
			WillReturnError(assert.AnError)

		_, err := repo.GetBySubjectID(context.Background(), "subject-123")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrProfileFetchFailure)
	})
}
