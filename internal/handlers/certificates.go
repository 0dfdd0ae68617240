package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/certportal/internal/cpf"
	"github.com/vaughan-dsouza/certportal/internal/models"
	"github.com/vaughan-dsouza/certportal/internal/utils"
)

type CertificateHandler struct {
	certs CertificateRepository
	log   *zap.SugaredLogger
}

func NewCertificateHandler(certs CertificateRepository, log *zap.SugaredLogger) *CertificateHandler {
	return &CertificateHandler{certs: certs, log: log}
}

type certificateReq struct {
	CPF       string `json:"cpf" validate:"required,min=11,max=14"`
	Registro  string `json:"registro" validate:"required"`
	Matricula string `json:"matricula" validate:"required"`
	Nome      string `json:"nome" validate:"required"`
	Curso     string `json:"curso" validate:"required"`
	Inicio    string `json:"inicio" validate:"required"`
	Fim       string `json:"fim" validate:"required"`
}

type certificateUpdateReq struct {
	CPF       *string `json:"cpf" validate:"omitnil,min=11,max=14"`
	Registro  *string `json:"registro" validate:"omitnil,min=1"`
	Matricula *string `json:"matricula" validate:"omitnil,min=1"`
	Nome      *string `json:"nome" validate:"omitnil,min=1"`
	Curso     *string `json:"curso" validate:"omitnil,min=1"`
	Inicio    *string `json:"inicio" validate:"omitnil,min=1"`
	Fim       *string `json:"fim" validate:"omitnil,min=1"`
}

func normalizeCPF(s string) (string, error) {
	n, ok := cpf.Normalize(s)
	if !ok {
		return "", models.Invalid("invalid CPF")
	}
	return n, nil
}

func (req certificateReq) toModel() (models.Certificate, error) {
	c := models.Certificate{
		Registro:  req.Registro,
		Matricula: req.Matricula,
		Nome:      req.Nome,
		Curso:     req.Curso,
	}
	var err error
	if c.CPF, err = normalizeCPF(req.CPF); err != nil {
		return c, err
	}
	if c.Inicio, err = utils.ParseDate("inicio", req.Inicio); err != nil {
		return c, err
	}
	if c.Fim, err = utils.ParseDate("fim", req.Fim); err != nil {
		return c, err
	}
	return c, nil
}

func (req certificateUpdateReq) toUpdate() (models.CertificateUpdate, error) {
	u := models.CertificateUpdate{
		Registro:  req.Registro,
		Matricula: req.Matricula,
		Nome:      req.Nome,
		Curso:     req.Curso,
	}
	if req.CPF != nil {
		n, err := normalizeCPF(*req.CPF)
		if err != nil {
			return u, err
		}
		u.CPF = &n
	}
	if req.Inicio != nil {
		d, err := utils.ParseDate("inicio", *req.Inicio)
		if err != nil {
			return u, err
		}
		u.Inicio = &d
	}
	if req.Fim != nil {
		d, err := utils.ParseDate("fim", *req.Fim)
		if err != nil {
			return u, err
		}
		u.Fim = &d
	}
	return u, nil
}

// ---------------------- LOOKUP (public) ----------------------

func (h *CertificateHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	key, err := normalizeCPF(chi.URLParam(r, "cpf"))
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	certs, err := h.certs.FindByCPF(r.Context(), key)
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	if len(certs) == 0 {
		utils.JSONError(w, http.StatusNotFound, "no certificates found")
		return
	}

	utils.JSON(w, http.StatusOK, certs)
}

// ---------------------- LIST ----------------------

func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	certs, err := h.certs.FindAll(r.Context())
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, certs)
}

// ---------------------- CREATE ----------------------

func (h *CertificateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body certificateReq
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if err := utils.Validate(body); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	cert, err := body.toModel()
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	if err := h.certs.Create(r.Context(), &cert); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusCreated, cert)
}

// ---------------------- UPDATE ----------------------

func (h *CertificateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body certificateUpdateReq
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if err := utils.Validate(body); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	update, err := body.toUpdate()
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	cert, err := h.certs.Update(r.Context(), id, update)
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, cert)
}

// ---------------------- DELETE ----------------------

func (h *CertificateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.certs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
