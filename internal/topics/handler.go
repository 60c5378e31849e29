package topics

import (
	"errors"
	"net/http"

	"github.com/dailyink/dailyink/internal/api"
	"github.com/dailyink/dailyink/internal/writemode"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Today serves GET /topics/today?mode=. The mode defaults to short.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	mode := writemode.Short
	if q := r.URL.Query().Get("mode"); q != "" {
		m, err := writemode.Parse(q)
		if err != nil {
			api.HandleError(w, api.NewValidationError(err.Error()))
			return
		}
		mode = m
	}

	t, err := h.svc.Today(r.Context(), mode)
	if err != nil {
		if errors.Is(err, ErrNoTopic) {
			api.HandleError(w, api.NewNotFoundError(err.Error()))
			return
		}
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, t)
}
