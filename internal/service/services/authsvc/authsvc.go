package authsvc

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/agronexus/marketplace/internal/apperrors"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iuserrepo"
	"github.com/agronexus/marketplace/internal/dal/postgres"
	userrepo "github.com/agronexus/marketplace/internal/dal/repositories/user/postgres"
	"github.com/agronexus/marketplace/internal/service/models/user"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// AuthService registers and authenticates accounts and resolves session
// tokens to users. Other services never look identity up themselves; they
// receive the acting user ID explicitly from their caller.
type AuthService struct {
	userRepo iuserrepo.IUserRepository
	secret   []byte
	tokenTTL time.Duration
}

// option is a function that configures the AuthService.
type option func(*AuthService)

// MustNewAuthService creates a new AuthService. The signing secret comes
// from MARKETPLACE_JWT_SECRET unless overridden.
func MustNewAuthService(opts ...option) *AuthService {
	s := &AuthService{
		secret:   []byte(os.Getenv("MARKETPLACE_JWT_SECRET")),
		tokenTTL: viper.GetDuration("auth.token_ttl"),
	}
	if s.tokenTTL == 0 {
		s.tokenTTL = defaultTokenTTL
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.userRepo == nil {
		panic("authsvc: user repository is required")
	}
	if len(s.secret) == 0 {
		panic("authsvc: signing secret is required")
	}

	return s
}

// WithPostgresClient builds the repository from the Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *AuthService) {
		s.userRepo = userrepo.NewPostgresUserRepository(pgClient.Pool())
	}
}

// WithUserRepository sets the user repository directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUserRepository(repo iuserrepo.IUserRepository) option {
	return func(s *AuthService) {
		s.userRepo = repo
	}
}

// WithSecret sets the token signing secret.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSecret(secret []byte) option {
	return func(s *AuthService) {
		s.secret = secret
	}
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	UserType  user.Type
	FirstName string
	LastName  string
	FarmName  string
	Location  string
	Phone     string
	Address   string
}

// UpdateProfileInput carries optional profile updates; nil fields are left
// unchanged.
type UpdateProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	FarmName  *string
	Location  *string
	Phone     *string
	Address   *string
}

// Register creates an account and returns it with a signed session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*user.User, string, error) {
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, "", fmt.Errorf("%w: username, email and password are required", apperrors.ErrValidation)
	}

	if in.UserType == "" {
		in.UserType = user.TypeBuyer
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", fmt.Errorf("%w: user with this email already exists", apperrors.ErrValidation)
	}

	existing, err = s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", fmt.Errorf("%w: username already taken", apperrors.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	// Farm fields are meaningful for farmer accounts only.
	farmName, location := "", ""
	if in.UserType == user.TypeFarmer {
		farmName = in.FarmName
		location = in.Location
	}

	now := time.Now()
	u := user.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		FarmName:     farmName,
		Location:     location,
		Phone:        in.Phone,
		Address:      in.Address,
		Type:         in.UserType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Insert(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.signToken(&u)
	if err != nil {
		return nil, "", err
	}

	return &u, token, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := s.signToken(u)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// VerifyToken resolves a session token to its user.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*user.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid authentication token", apperrors.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid authentication token", apperrors.ErrUnauthorized)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: invalid authentication token", apperrors.ErrUnauthorized)
	}

	u, err := s.userRepo.GetByID(ctx, sub)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user not found", apperrors.ErrUnauthorized)
	}

	return u, nil
}

// GetUser retrieves a user by id, nil when absent.
func (s *AuthService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies profile changes. Only the account owner or an admin
// may update a profile.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *user.User, id string, in UpdateProfileInput) (*user.User, error) {
	if actor == nil || (actor.ID != id && actor.Type != user.TypeAdmin) {
		return nil, fmt.Errorf("%w: not allowed to update this profile", apperrors.ErrUnauthorized)
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id)
	}

	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.FarmName != nil {
		u.FarmName = *in.FarmName
	}
	if in.Location != nil {
		u.Location = *in.Location
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Address != nil {
		u.Address = *in.Address
	}

	u.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, *u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *AuthService) signToken(u *user.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":       u.ID,
		"email":     u.Email,
		"user_type": string(u.Type),
		"exp":       time.Now().Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
