package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/types"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	payRateRepo   repos.PayRateRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	payRateRepo repos.PayRateRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		payRateRepo:   payRateRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	if user == nil {
		return apierr.Validation("no user given")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" {
		return apierr.Validation("an email is required to register")
	}
	if user.Password == "" {
		return apierr.Validation("a password is required to register")
	}
	if user.FirstName == "" || user.LastName == "" {
		return apierr.Validation("a first and last name are required to register")
	}
	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("check user email: %w", err)
	}
	if exists {
		return apierr.Conflict("email %s is already in use", user.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", apierr.Validation("email and password are required to login")
	}
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", "", fmt.Errorf("load user by email: %w", err)
	}
	if user == nil {
		return "", "", apierr.Validation("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", apierr.Validation("invalid email or password")
	}

	accessToken, err := as.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}

	refreshToken := uuid.NewString()
	now := time.Now()
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(as.refreshTTL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := as.userTokenRepo.Create(ctx, nil, row); err != nil {
		return "", "", fmt.Errorf("create refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apierr.Validation("a refresh token is required")
	}
	row, err := as.userTokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		return "", fmt.Errorf("load refresh token: %w", err)
	}
	if row == nil || row.ExpiresAt.Before(time.Now()) {
		return "", apierr.Forbidden("refresh token is invalid or expired")
	}
	user, err := as.userRepo.GetByID(ctx, nil, row.UserID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return "", apierr.NotFound("user %s not found", row.UserID)
	}
	return as.generateAccessToken(user)
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Forbidden("not logged in")
	}
	return as.userTokenRepo.DeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(as.accessTTL).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// SetContextFromToken verifies an access token and hydrates the caller
// context: identity, admin flag and the roles the user is payable for.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid access token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, fmt.Errorf("invalid token subject")
	}
	isAdmin, _ := claims["is_admin"].(bool)

	rates, err := as.payRateRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return ctx, fmt.Errorf("load user roles: %w", err)
	}
	roles := make([]string, 0, len(rates))
	for _, r := range rates {
		roles = append(roles, string(r.Role))
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		IsAdmin:     isAdmin,
		Roles:       roles,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}
