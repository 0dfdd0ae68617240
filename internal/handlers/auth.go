package handlers

import (
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vaughan-dsouza/certportal/internal/metrics"
	"github.com/vaughan-dsouza/certportal/internal/middleware"
	"github.com/vaughan-dsouza/certportal/internal/models"
	"github.com/vaughan-dsouza/certportal/internal/utils"
)

type AuthHandler struct {
	admins  AdminRepository
	tokens  TokenIssuer
	hasher  PasswordHasher
	limiter LoginLimiter
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

func NewAuthHandler(d Deps) *AuthHandler {
	return &AuthHandler{
		admins:  d.Admins,
		tokens:  d.Tokens,
		hasher:  d.Hasher,
		limiter: d.Limiter,
		metrics: d.Metrics,
		log:     d.Log,
	}
}

// ----------- Request/Response DTOs -------------

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      models.AdminProfile `json:"user"`
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	ip := clientIP(r)
	if h.limiter != nil {
		ok, err := h.limiter.Allow(r.Context(), ip)
		if err != nil {
			// fail open: a broken throttle must not lock everyone out
			h.log.Warnw("login limiter unavailable", "error", err)
		} else if !ok {
			h.metrics.Login("throttled")
			utils.JSONError(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}
	}

	admin, err := h.admins.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, models.ErrNotFound) {
		h.hasher.CompareDummy(req.Password)
		h.metrics.Login("failure")
		utils.WriteError(w, h.log, models.ErrInvalidCredentials)
		return
	}
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	if !h.hasher.Compare(admin.PasswordHash, req.Password) {
		h.metrics.Login("failure")
		utils.WriteError(w, h.log, models.ErrInvalidCredentials)
		return
	}

	token, exp, err := h.tokens.Issue(admin.ID, admin.Role, 0)
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	if h.limiter != nil {
		if err := h.limiter.Reset(r.Context(), ip); err != nil {
			h.log.Warnw("login limiter reset failed", "error", err)
		}
	}
	h.metrics.Login("success")

	utils.JSON(w, http.StatusOK, loginResp{
		Token:     token,
		ExpiresAt: exp,
		User:      admin.Profile(),
	})
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.WriteError(w, h.log, models.ErrUnauthenticated)
		return
	}

	admin, err := h.admins.FindByID(r.Context(), id.Subject)
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, admin.Profile())
}

// clientIP is the host part of RemoteAddr. Forwarding headers only count when
// the router was told to trust them.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
