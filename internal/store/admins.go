package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"

	"github.com/vaughan-dsouza/certportal/internal/db"
	"github.com/vaughan-dsouza/certportal/internal/models"
)

const adminColumns = `id, email, password_hash, role, created_at, updated_at`

type AdminStore struct {
	DB    *sqlx.DB
	clock clockwork.Clock
}

func NewAdminStore(conn *sqlx.DB, clock clockwork.Clock) *AdminStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AdminStore{DB: conn, clock: clock}
}

// FindByEmail matches the email exactly as stored.
func (s *AdminStore) FindByEmail(ctx context.Context, email string) (models.Admin, error) {
	return s.findOne(ctx, `email = ?`, email)
}

func (s *AdminStore) FindByID(ctx context.Context, id string) (models.Admin, error) {
	return s.findOne(ctx, `id = ?`, id)
}

func (s *AdminStore) findOne(ctx context.Context, where string, arg any) (models.Admin, error) {
	var a models.Admin
	q := s.DB.Rebind(`SELECT ` + adminColumns + ` FROM admins WHERE ` + where)
	err := s.DB.GetContext(ctx, &a, q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, models.ErrNotFound
	}
	if err != nil {
		return models.Admin{}, fmt.Errorf("find admin: %w", err)
	}
	return a, nil
}

func (s *AdminStore) List(ctx context.Context) ([]models.AdminProfile, error) {
	admins := []models.AdminProfile{}
	err := s.DB.SelectContext(ctx, &admins, `SELECT id, email, role, created_at FROM admins ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// Create inserts a, filling id and timestamps. A duplicate email yields
// models.ErrConflict.
func (s *AdminStore) Create(ctx context.Context, a *models.Admin) error {
	now := s.clock.Now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now

	q := s.DB.Rebind(`INSERT INTO admins (` + adminColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.DB.ExecContext(ctx, q, a.ID, a.Email, a.PasswordHash, a.Role, a.CreatedAt, a.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (s *AdminStore) Update(ctx context.Context, id string, u models.AdminUpdate) (models.AdminProfile, error) {
	var (
		sets []string
		args []any
	)
	if u.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *u.PasswordHash)
	}
	if u.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *u.Role)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, s.clock.Now().UTC(), id)

		q := s.DB.Rebind(`UPDATE admins SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
		res, err := s.DB.ExecContext(ctx, q, args...)
		if err != nil {
			return models.AdminProfile{}, fmt.Errorf("update admin: %w", err)
		}
		if err := affectedOne(res); err != nil {
			return models.AdminProfile{}, err
		}
	}

	a, err := s.FindByID(ctx, id)
	if err != nil {
		return models.AdminProfile{}, err
	}
	return a.Profile(), nil
}

func (s *AdminStore) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, s.DB.Rebind(`DELETE FROM admins WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	return affectedOne(res)
}
