package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/certportal/internal/models"
	"github.com/vaughan-dsouza/certportal/internal/utils"
)

type AdminHandler struct {
	admins AdminRepository
	hasher PasswordHasher
	log    *zap.SugaredLogger
}

func NewAdminHandler(admins AdminRepository, hasher PasswordHasher, log *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{admins: admins, hasher: hasher, log: log}
}

// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
type adminCreateReq struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=ADMIN"`
}

type adminUpdateReq struct {
	Password *string      `json:"password" validate:"omitnil,min=6,max=72"`
	Role     *models.Role `json:"role" validate:"omitnil,oneof=ADMIN"`
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.List(r.Context())
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body adminCreateReq
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if err := utils.Validate(body); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	if body.Role == "" {
		body.Role = models.RoleAdmin
	}

	hash, err := h.hasher.Hash(body.Password)
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	admin := models.Admin{Email: body.Email, PasswordHash: hash, Role: body.Role}
	if err := h.admins.Create(r.Context(), &admin); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusCreated, admin.Profile())
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body adminUpdateReq
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if err := utils.Validate(body); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	var update models.AdminUpdate
	if body.Password != nil {
		hash, err := h.hasher.Hash(*body.Password)
		if err != nil {
			utils.WriteError(w, h.log, err)
			return
		}
		update.PasswordHash = &hash
	}
	update.Role = body.Role

	profile, err := h.admins.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, profile)
}

// Delete removes any admin, including the caller's own account.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.admins.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
