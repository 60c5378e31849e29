package streak

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dailyink/dailyink/internal/api"
	"github.com/dailyink/dailyink/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

var weekdayIndex = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3, "friday": 4,
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4,
}

// parseDay accepts an index 0..4 or an English weekday name.
func parseDay(s string) (int, error) {
	if idx, ok := weekdayIndex[strings.ToLower(s)]; ok {
		return idx, nil
	}
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 || idx >= DaysPerWeek {
		return 0, ErrInvalidDay
	}
	return idx, nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	st, err := h.svc.Get(r.Context(), id.UserID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, ViewOf(*st))
}

func (h *Handler) MarkDay(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	day, err := parseDay(chi.URLParam(r, "day"))
	if err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	st, err := h.svc.MarkDay(r.Context(), id.UserID, day)
	if err != nil {
		if errors.Is(err, ErrInvalidDay) {
			api.HandleError(w, api.NewValidationError(err.Error()))
			return
		}
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, ViewOf(*st))
}
