package profile

import (
	"net/http"

	"github.com/dailyink/dailyink/internal/api"
	"github.com/dailyink/dailyink/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get returns the caller's profile. A first visit creates it from the
// token's nickname and email.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	p, err := h.svc.GetProfile(r.Context(), id.UserID, &UserInfo{DisplayName: id.Nickname, Email: id.Email})
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, p)
}
