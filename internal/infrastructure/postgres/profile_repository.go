package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) GetByUID(ctx context.Context, uid string) (*entity.Profile, error) {
	p := &entity.Profile{}
	var provider string
	var prefs []byte

	row := r.pool.QueryRow(ctx, `
		SELECT uid, email, display_name, photo_url, auth_provider, role, preferences,
		       created_at, updated_at, last_login
		FROM profiles
		WHERE uid = $1
	`, uid)

	if err := row.Scan(&p.UID, &p.Email, &p.DisplayName, &p.PhotoURL, &provider, &p.Role, &prefs,
		&p.CreatedAt, &p.UpdatedAt, &p.LastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	p.AuthProvider = entity.AuthProvider(provider)
	p.Preferences = entity.DefaultPreferences()
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &p.Preferences); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO profiles (uid, email, display_name, photo_url, auth_provider, role, preferences,
		                      created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.UID, p.Email, p.DisplayName, p.PhotoURL, string(p.AuthProvider), p.Role, prefs,
		p.CreatedAt, p.UpdatedAt, p.LastLogin)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateAccount
	}
	return err
}

func (r *ProfileRepository) RecordLogin(ctx context.Context, uid string, refresh repository.ProfileRefresh, at time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET email        = COALESCE(NULLIF($2, ''), email),
		    display_name = COALESCE(NULLIF($3, ''), display_name),
		    photo_url    = COALESCE(NULLIF($4, ''), photo_url),
		    last_login   = $5,
		    updated_at   = $5
		WHERE uid = $1
	`, uid, refresh.Email, refresh.DisplayName, refresh.PhotoURL, at)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, uid string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE uid = $1`, uid)
	return err
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
