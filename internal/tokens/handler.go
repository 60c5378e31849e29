package tokens

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dailyink/dailyink/internal/api"
	"github.com/dailyink/dailyink/internal/auth"
	"github.com/dailyink/dailyink/internal/writemode"
)

// Handler exposes the token ledger over HTTP.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

type UnlockFeedbackRequest struct {
	Mode string `json:"mode" validate:"required"`
}

// GetBalance returns the authenticated user's pools and golden keys.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	b, err := h.svc.GetBalance(r.Context(), id.UserID)
	if err != nil {
		api.HandleError(w, HTTPError(err))
		return
	}
	api.JSON(w, http.StatusOK, h.svc.StatusOf(b))
}

// GetHistory returns the user's token history grouped by ?granularity=day|month.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	g, err := ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	report, err := h.svc.SummarizeHistory(r.Context(), id.UserID, g)
	if err != nil {
		api.HandleError(w, HTTPError(err))
		return
	}
	api.JSON(w, http.StatusOK, report)
}

// UnlockFeedback spends a golden key.
func (h *Handler) UnlockFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req UnlockFeedbackRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}
	mode, err := writemode.Parse(req.Mode)
	if err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	b, err := h.svc.UnlockFeedback(r.Context(), id.UserID, mode)
	if err != nil {
		api.HandleError(w, HTTPError(err))
		return
	}
	api.JSON(w, http.StatusOK, h.svc.StatusOf(b))
}

// HTTPError maps ledger errors to API errors. Submission handlers reuse it
// because a submission debits a token.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInsufficientTokens):
		return api.ErrInsufficientTokens
	case errors.Is(err, ErrNoGoldenKeys):
		return api.ErrNoGoldenKeys
	case errors.Is(err, writemode.ErrUnknownMode), errors.Is(err, ErrInvalidAmount):
		return api.NewValidationError(err.Error())
	case errors.Is(err, ErrNotFound):
		return api.ErrNotFound
	}
	return err
}
