package auth

import (
	"context"
	"net/http"

	"github.com/agronexus/marketplace/internal/service/models/user"
	"github.com/agronexus/marketplace/internal/service/services/authsvc"
	"github.com/agronexus/marketplace/internal/transport/http/httperr"
	authmw "github.com/agronexus/marketplace/pkg/http/middleware/auth"
)

// service is an interface for the auth service layer.
type service interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (*user.User, string, error)
	Login(ctx context.Context, email, password string) (*user.User, string, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	UpdateProfile(ctx context.Context, actor *user.User, id string, in authsvc.UpdateProfileInput) (*user.User, error)
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserType  string `json:"userType"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FarmName  string `json:"farmName"`
	Location  string `json:"location"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

// Register handles account creation.
func Register(w http.ResponseWriter, r *http.Request, service service) {
	var req registerRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	u, token, err := service.Register(r.Context(), authsvc.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		UserType:  user.Type(req.UserType),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		FarmName:  req.FarmName,
		Location:  req.Location,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusCreated, sessionResponse{User: u, Token: token})
}

// Login handles email/password authentication.
func Login(w http.ResponseWriter, r *http.Request, service service) {
	var req loginRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	u, token, err := service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, sessionResponse{User: u, Token: token})
}

// Me returns the authenticated user's profile.
func Me(w http.ResponseWriter, r *http.Request) {
	u := authmw.UserFromContext(r.Context())

	httperr.WriteJSON(w, http.StatusOK, u)
}

type updateProfileRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	FarmName  *string `json:"farmName"`
	Location  *string `json:"location"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// UpdateProfile handles profile updates for the authenticated user.
func UpdateProfile(w http.ResponseWriter, r *http.Request, service service) {
	actor := authmw.UserFromContext(r.Context())

	var req updateProfileRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	u, err := service.UpdateProfile(r.Context(), actor, actor.ID, authsvc.UpdateProfileInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		FarmName:  req.FarmName,
		Location:  req.Location,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, u)
}
