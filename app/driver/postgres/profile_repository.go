package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
)

// ProfileRepository implements port.ProfileRepository for PostgreSQL.
// Profile rows are keyed by the backend-issued subject id.
type ProfileRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(db DatabaseIface, logger *slog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger.With("component", "profile_repository"),
	}
}

// Create inserts a profile row for a newly registered subject
func (r *ProfileRepository) Create(ctx context.Context, identity *domain.Identity) error {
	query := `
		INSERT INTO profiles (subject_id, display_name, email, role, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		identity.ID,
		identity.DisplayName,
		identity.Email,
		string(identity.Role),
		identity.AvatarURL,
		identity.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create profile", "subject_id", identity.ID, "error", err)
		return fmt.Errorf("failed to create profile: %w", err)
	}

	r.logger.Info("profile created", "subject_id", identity.ID, "role", identity.Role)
	return nil
}

// GetBySubjectID resolves a profile row by its subject id
func (r *ProfileRepository) GetBySubjectID(ctx context.Context, subjectID string) (*domain.Identity, error) {
	query := `
		SELECT subject_id, display_name, email, role, avatar_url, created_at
		FROM profiles
		WHERE subject_id = $1`

	var (
		identity  domain.Identity
		role      string
		createdAt time.Time
	)

	row := r.db.QueryRow(ctx, query, subjectID)
	err := row.Scan(&identity.ID, &identity.DisplayName, &identity.Email, &role, &identity.AvatarURL, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", subjectID, domain.ErrProfileFetchFailure)
		}
		r.logger.Error("failed to fetch profile", "subject_id", subjectID, "error", err)
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	identity.Role = domain.Role(role)
	identity.CreatedAt = createdAt

	return &identity, nil
}
