package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vaughan-dsouza/certportal/internal/metrics"
	"github.com/vaughan-dsouza/certportal/internal/models"
)

type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (models.Admin, error)
	FindByID(ctx context.Context, id string) (models.Admin, error)
	List(ctx context.Context) ([]models.AdminProfile, error)
	Create(ctx context.Context, a *models.Admin) error
	Update(ctx context.Context, id string, u models.AdminUpdate) (models.AdminProfile, error)
	Delete(ctx context.Context, id string) error
}

type CertificateRepository interface {
	FindByCPF(ctx context.Context, cpf string) ([]models.Certificate, error)
	FindAll(ctx context.Context) ([]models.Certificate, error)
	Create(ctx context.Context, c *models.Certificate) error
	Update(ctx context.Context, id string, u models.CertificateUpdate) (models.Certificate, error)
	Delete(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(subject string, role models.Role, ttl time.Duration) (string, time.Time, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
	CompareDummy(password string)
}

// LoginLimiter throttles login attempts per client. Optional.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type Deps struct {
	Admins       AdminRepository
	Certificates CertificateRepository
	Tokens       TokenIssuer
	Hasher       PasswordHasher
	Limiter      LoginLimiter
	Metrics      *metrics.Metrics
	Log          *zap.SugaredLogger
}

type Handler struct {
	Auth         *AuthHandler
	Certificates *CertificateHandler
	Admins       *AdminHandler
}

func NewHandler(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	return &Handler{
		Auth:         NewAuthHandler(d),
		Certificates: NewCertificateHandler(d.Certificates, d.Log),
		Admins:       NewAdminHandler(d.Admins, d.Hasher, d.Log),
	}
}
