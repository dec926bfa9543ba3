package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agronexus/marketplace/internal/service/models/user"
	"github.com/agronexus/marketplace/internal/transport/http/httperr"
)

// service is the slice of the auth service the public profile needs.
type service interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type profileResponse struct {
	*user.User
	FullName string `json:"fullName"`
}

// Profile returns a user's public profile. The password hash never
// serializes; the display name falls back to username, then email.
func Profile(w http.ResponseWriter, r *http.Request, service service) {
	u, err := service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, err)

		return
	}
	if u == nil {
		httperr.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})

		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string]any{
		"user": profileResponse{User: u, FullName: u.FullName()},
	})
}
