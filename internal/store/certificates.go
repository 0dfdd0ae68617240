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

	"github.com/vaughan-dsouza/certportal/internal/models"
)

const certificateColumns = `id, cpf, registro, matricula, nome, curso, inicio, fim, created_at, updated_at`

type CertificateStore struct {
	DB    *sqlx.DB
	clock clockwork.Clock
}

func NewCertificateStore(db *sqlx.DB, clock clockwork.Clock) *CertificateStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CertificateStore{DB: db, clock: clock}
}

// FindByCPF returns every certificate for a normalized CPF, newest start
// date first. No match yields an empty slice, not an error.
func (s *CertificateStore) FindByCPF(ctx context.Context, cpf string) ([]models.Certificate, error) {
	certs := []models.Certificate{}
	q := s.DB.Rebind(`SELECT ` + certificateColumns + ` FROM certificates WHERE cpf = ? ORDER BY inicio DESC, created_at DESC`)
	if err := s.DB.SelectContext(ctx, &certs, q, cpf); err != nil {
		return nil, fmt.Errorf("find certificates by cpf: %w", err)
	}
	return certs, nil
}

func (s *CertificateStore) FindAll(ctx context.Context) ([]models.Certificate, error) {
	certs := []models.Certificate{}
	q := `SELECT ` + certificateColumns + ` FROM certificates ORDER BY created_at DESC`
	if err := s.DB.SelectContext(ctx, &certs, q); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

func (s *CertificateStore) FindByID(ctx context.Context, id string) (models.Certificate, error) {
	var c models.Certificate
	q := s.DB.Rebind(`SELECT ` + certificateColumns + ` FROM certificates WHERE id = ?`)
	err := s.DB.GetContext(ctx, &c, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Certificate{}, models.ErrNotFound
	}
	if err != nil {
		return models.Certificate{}, fmt.Errorf("find certificate: %w", err)
	}
	return c, nil
}

// Create assigns the id and timestamps and inserts c. c.CPF must already be
// normalized.
func (s *CertificateStore) Create(ctx context.Context, c *models.Certificate) error {
	return s.insert(ctx, s.DB, c)
}

// CreateMany inserts all certificates in one transaction.
func (s *CertificateStore) CreateMany(ctx context.Context, certs []models.Certificate) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for i := range certs {
		if err := s.insert(ctx, tx, &certs[i]); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func (s *CertificateStore) insert(ctx context.Context, ex sqlx.ExtContext, c *models.Certificate) error {
	now := s.clock.Now().UTC()
	c.ID = uuid.NewString()
	c.Inicio = c.Inicio.UTC()
	c.Fim = c.Fim.UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	q := ex.Rebind(`
		INSERT INTO certificates (` + certificateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := ex.ExecContext(ctx, q, c.ID, c.CPF, c.Registro, c.Matricula, c.Nome, c.Curso, c.Inicio, c.Fim, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// Update writes only the supplied fields and returns the stored record.
func (s *CertificateStore) Update(ctx context.Context, id string, u models.CertificateUpdate) (models.Certificate, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if u.CPF != nil {
		add("cpf", *u.CPF)
	}
	if u.Registro != nil {
		add("registro", *u.Registro)
	}
	if u.Matricula != nil {
		add("matricula", *u.Matricula)
	}
	if u.Nome != nil {
		add("nome", *u.Nome)
	}
	if u.Curso != nil {
		add("curso", *u.Curso)
	}
	if u.Inicio != nil {
		add("inicio", u.Inicio.UTC())
	}
	if u.Fim != nil {
		add("fim", u.Fim.UTC())
	}

	if len(sets) == 0 {
		return s.FindByID(ctx, id)
	}

	add("updated_at", s.clock.Now().UTC())
	args = append(args, id)

	q := s.DB.Rebind(`UPDATE certificates SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := s.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return models.Certificate{}, fmt.Errorf("update certificate: %w", err)
	}
	if err := affectedOne(res); err != nil {
		return models.Certificate{}, err
	}

	return s.FindByID(ctx, id)
}

func (s *CertificateStore) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, s.DB.Rebind(`DELETE FROM certificates WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
