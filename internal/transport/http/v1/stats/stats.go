package stats

import (
	"context"
	"net/http"
	"strconv"

	statsmodel "github.com/agronexus/marketplace/internal/service/models/stats"
	"github.com/agronexus/marketplace/internal/service/models/user"
	"github.com/agronexus/marketplace/internal/transport/http/httperr"
	authmw "github.com/agronexus/marketplace/pkg/http/middleware/auth"
)

// service is an interface for the stats service layer.
type service interface {
	Dashboard(ctx context.Context, u *user.User) (*statsmodel.Dashboard, error)
	AdminTotals(ctx context.Context) (*statsmodel.AdminTotals, error)
	ListUsers(ctx context.Context, page, limit int) ([]user.User, int64, error)
}

// Dashboard returns the authenticated user's activity summary.
func Dashboard(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	d, err := service.Dashboard(r.Context(), u)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string]*statsmodel.Dashboard{"stats": d})
}

// AdminTotals returns the marketplace-wide aggregate. Admin only.
func AdminTotals(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())
	if u.Type != user.TypeAdmin {
		httperr.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "admin access required"})

		return
	}

	totals, err := service.AdminTotals(r.Context())
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, totals)
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type usersResponse struct {
	Users      []user.User `json:"users"`
	Pagination pagination  `json:"pagination"`
}

// AdminUsers returns one page of registered accounts. Admin only.
func AdminUsers(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())
	if u.Type != user.TypeAdmin {
		httperr.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "admin access required"})

		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	users, total, err := service.ListUsers(r.Context(), page, limit)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, usersResponse{
		Users: users,
		Pagination: pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + int64(limit) - 1) / int64(limit),
		},
	})
}
