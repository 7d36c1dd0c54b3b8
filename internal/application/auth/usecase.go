package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/domain"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
	"github.com/jhoicas/Comanda-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login y emisión de
// tokens de conteo QR (con alcance de ubicación y vida corta).
type AuthUseCase struct {
	userRepo     repository.UserRepository
	locationRepo repository.LocationRepository
	jwtCfg       JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, locationRepo repository.LocationRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, locationRepo: locationRepo, jwtCfg: jwtCfg}
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = in.Email
	}
	role := in.Role
	if role == "" {
		role = entity.RoleMesero
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// IssueCountToken emite un token de conteo QR: atado a una ubicación, con vida
// corta. El portador solo puede registrar conteos físicos en esa ubicación.
func (uc *AuthUseCase) IssueCountToken(ctx context.Context, issuerUserID string, in dto.CountTokenRequest) (*dto.CountTokenResponse, error) {
	if in.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	loc, err := uc.locationRepo.GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	ttl := in.TTLMinutes
	if ttl <= 0 || ttl > 240 {
		ttl = 30
	}
	token, err := jwt.GenerateCountToken(uc.jwtCfg.Secret, issuerUserID, in.LocationID, uc.jwtCfg.Issuer, ttl)
	if err != nil {
		return nil, err
	}
	return &dto.CountTokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(ttl) * time.Minute),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
