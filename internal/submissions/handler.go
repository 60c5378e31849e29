package submissions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dailyink/dailyink/internal/api"
	"github.com/dailyink/dailyink/internal/auth"
	"github.com/dailyink/dailyink/internal/tokens"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req Request
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	sub, err := h.svc.Submit(r.Context(), Author{UserID: id.UserID, Nickname: id.Nickname, Email: id.Email}, req)
	if err != nil {
		api.HandleError(w, httpError(err))
		return
	}
	api.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	subID, err := uuid.Parse(chi.URLParam(r, "submissionID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid submission id"))
		return
	}

	sub, err := h.svc.Get(r.Context(), id.UserID, subID)
	if err != nil {
		api.HandleError(w, httpError(err))
		return
	}
	api.JSON(w, http.StatusOK, sub)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	subs, err := h.svc.List(r.Context(), id.UserID, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, subs)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrEmptyText), errors.Is(err, ErrTextTooLong):
		return api.NewValidationError(err.Error())
	case errors.Is(err, ErrNotFound):
		return api.NewNotFoundError(err.Error())
	}
	return tokens.HTTPError(err)
}
