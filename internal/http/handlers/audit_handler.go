package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/http/middleware"
	"website_auditor/internal/pkg/errors"
	"website_auditor/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

type AuditHandler struct {
	service   service.Auditor
	validator *validator.Validate
	log       *log.Logger
}

type SubmitAuditRequest struct {
	WebsiteURL    string `json:"websiteUrl" validate:"required,http_url"`
	Email         string `json:"email" validate:"required,email"`
	Name          string `json:"name" validate:"required,min=2,max=100"`
	CompanyDomain string `json:"companyDomain" validate:"omitempty,fqdn"`
}

type SubmitAuditResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	AuditID string `json:"auditId"`
}

type AuditStatusResponse struct {
	Success bool               `json:"success"`
	Audit   *models.StatusView `json:"audit"`
}

func NewAuditHandler(service service.Auditor, log *log.Logger) *AuditHandler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get(`json`), `,`, 2)[0]
		if name == `-` {
			return ``
		}
		return name
	})
	return &AuditHandler{
		service:   service,
		validator: v,
		log:       log,
	}
}

func (h *AuditHandler) Submit(w http.ResponseWriter, r *http.Request) {
	logger := h.log.WithField(`request_id`, middleware.RequestIDFromContext(r.Context()))

	var request SubmitAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sendError(w, logger, `failed to decode request body`, fmt.Errorf(`invalid JSON body`), http.StatusBadRequest)
		return
	}
	request.WebsiteURL = strings.TrimSpace(request.WebsiteURL)
	request.Email = strings.TrimSpace(request.Email)
	request.Name = strings.TrimSpace(request.Name)
	request.CompanyDomain = strings.TrimSpace(request.CompanyDomain)

	if err := h.validator.Struct(request); err != nil {
		sendError(w, logger, `failed to validate request body`, validationError(err), http.StatusBadRequest)
		return
	}

	id, err := h.service.SubmitAudit(r.Context(), service.SubmitRequest{
		WebsiteURL:    request.WebsiteURL,
		Email:         request.Email,
		Name:          request.Name,
		CompanyDomain: request.CompanyDomain,
	})
	switch {
	case errors.Is(err, models.ErrQueueFull), errors.Is(err, models.ErrShuttingDown):
		w.Header().Set(`Retry-After`, `30`)
		sendError(w, logger, `audit not accepted`, err, http.StatusServiceUnavailable)
		return
	case err != nil:
		logger.WithError(err).Error(`failed to submit audit`)
		sendError(w, logger, `failed to submit audit`, nil, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitAuditResponse{
		Success: true,
		Message: `Audit started`,
		AuditID: id,
	})
}

func (h *AuditHandler) Status(w http.ResponseWriter, r *http.Request) {
	logger := h.log.WithField(`request_id`, middleware.RequestIDFromContext(r.Context()))

	id := strings.TrimSpace(chi.URLParam(r, `id`))
	if id == "" {
		sendError(w, logger, `audit id is required`, nil, http.StatusBadRequest)
		return
	}

	view, err := h.service.GetAuditStatus(r.Context(), id)
	switch {
	case errors.Is(err, models.ErrAuditNotFound):
		sendError(w, logger, `audit not found`, nil, http.StatusNotFound)
		return
	case err != nil:
		logger.WithError(err).WithField(`audit_id`, id).Error(`failed to load audit`)
		sendError(w, logger, `failed to load audit`, nil, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, AuditStatusResponse{Success: true, Audit: view})
}

// validationError reports the first failing field by its JSON name.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return fmt.Errorf(`validation error: invalid request`)
	}
	return fmt.Errorf(`validation error: %s - %s`, ve[0].Field(), ve[0].Tag())
}
