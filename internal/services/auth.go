package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/cashswap-backend/internal/data/dberr"
	"github.com/yungbote/cashswap-backend/internal/data/repos"
	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type SignupInput struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	OTP        string `json:"otp"`
}

type AuthService interface {
	SendOTP(ctx context.Context, email string) error
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// SetContextFromToken validates a bearer token and attaches the caller's
	// identity to ctx.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	Me(ctx context.Context) (*domain.User, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	otp          OTPService
	jwtSecretKey string
	accessTTL    time.Duration
	bcryptCost   int
}

func NewAuthService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	otp OTPService,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		otp:          otp,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

var (
	otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

	errBadCredentials = errors.New("invalid credentials")
)

func (as *authService) SendOTP(ctx context.Context, email string) error {
	return as.otp.Send(ctx, email)
}

func (as *authService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	const op = "auth.signup"
	email, err := normalizeEmail(op, in.Email)
	if err != nil {
		return nil, err
	}
	first := strings.TrimSpace(in.FirstName)
	second := strings.TrimSpace(in.SecondName)
	if n := utf8.RuneCountInString(first); n < 1 || n > 50 {
		return nil, domain.Validation(op, "first_name must be 1-50 characters")
	}
	if n := utf8.RuneCountInString(second); n < 1 || n > 50 {
		return nil, domain.Validation(op, "second_name must be 1-50 characters")
	}
	if err := validatePassword(op, in.Password); err != nil {
		return nil, err
	}
	if !otpPattern.MatchString(strings.TrimSpace(in.OTP)) {
		return nil, domain.Validation(op, "otp must be 6 digits")
	}

	if err := as.otp.Verify(ctx, email, strings.TrimSpace(in.OTP)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := as.userRepo.Create(dbctx.Context{Ctx: ctx}, &domain.User{
		Email:      email,
		Password:   string(hash),
		FirstName:  first,
		SecondName: second,
		Verified:   true,
	})
	if dberr.IsUniqueViolation(err) {
		return nil, domain.Conflict(op, "An account with this email already exists")
	}
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	as.log.Info("user signed up", "user_id", user.ID)
	observability.Current().IncEvent(observability.EventUserSignedUp)
	return user, nil
}

func validatePassword(op, pw string) error {
	if len(pw) < 8 {
		return domain.Validation(op, "password must be at least 8 characters")
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return domain.Validation(op, "password must contain a lowercase letter, an uppercase letter and a digit")
	}
	return nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	const op = "auth.login"
	email = domain.NormalizeIdentity(email)
	if email == "" || password == "" {
		return "", nil, domain.Validation(op, "email and password are required")
	}
	user, err := as.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return "", nil, dberr.Map(op, err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		observability.Current().IncEvent(observability.EventLoginFailed)
		return "", nil, domain.NewError(domain.CodeUnauthorized, op, "Invalid email or password", errBadCredentials)
	}
	tok, err := as.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}
	return tok, user, nil
}

func (as *authService) generateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Email:     user.Email,
		FirstName: user.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	const op = "auth.token"
	if tokenString == "" {
		return ctx, domain.Unauthorized(op, "Access token required")
	}
	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return ctx, domain.NewError(domain.CodeUnauthorized, op, "Invalid or expired token", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, domain.NewError(domain.CodeUnauthorized, op, "Invalid or expired token", err)
	}
	email := domain.NormalizeIdentity(claims.Email)
	if email == "" {
		return ctx, domain.Unauthorized(op, "Invalid or expired token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Email:       email,
	}), nil
}

func (as *authService) Me(ctx context.Context) (*domain.User, error) {
	const op = "auth.me"
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, domain.Unauthorized(op, "Access token required")
	}
	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, rd.UserID)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if user == nil {
		return nil, domain.NotFound(op, "user not found")
	}
	return user, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

// callerIdentity returns the verified email attached by SetContextFromToken.
func callerIdentity(ctx context.Context, op string) (string, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.Email == "" {
		return "", domain.Unauthorized(op, "Access token required")
	}
	return rd.Email, nil
}
