// Package auth is the stand-in authenticator: it checks form input locally
// and mints a signed bearer token. There is no server-side account store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

const (
	issuer            = "kinmatch"
	minPasswordLength = 6
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("please fill in all required fields")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	ErrInvalidRole        = errors.New("account type must be mother or child")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims are the JWT claims carried by a session token. Subject is the user id.
type Claims struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// User returns the identity encoded in the claims.
func (c *Claims) User() domain.User {
	return domain.User{ID: c.Subject, Name: c.Name, Email: c.Email, Role: c.Role}
}

// Authenticator validates credentials and issues HS256 session tokens.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

// New returns an Authenticator signing with secret.
func New(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// Registration is the sign-up form.
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Role            domain.Role
}

// ValidateAccount checks the account step: email and both passwords.
func (r Registration) ValidateAccount() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" || r.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(r.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidateDetails checks the personal-details step.
func (r Registration) ValidateDetails() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Phone) == "" {
		return ErrMissingFields
	}
	if !domain.ValidRole(r.Role) {
		return ErrInvalidRole
	}
	return nil
}

// Validate runs every step's checks in form order.
func (r Registration) Validate() error {
	if err := r.ValidateAccount(); err != nil {
		return err
	}
	return r.ValidateDetails()
}

// Login accepts any well-formed email with a non-empty password.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || password == "" {
		return nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}
	user := domain.User{
		ID:    UserID(email),
		Name:  displayName(email),
		Email: email,
		Role:  domain.RoleMother,
	}
	return a.issue(user, "auth.Login")
}

// Register validates the form and issues a session for the new account.
func (a *Authenticator) Register(ctx context.Context, r Registration) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}
	email := strings.TrimSpace(r.Email)
	user := domain.User{
		ID:    UserID(email),
		Name:  strings.TrimSpace(r.Name),
		Email: email,
		Role:  r.Role,
	}
	return a.issue(user, "auth.Register")
}

func (a *Authenticator) issue(user domain.User, op string) (*domain.Session, error) {
	tok, err := a.Sign(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &domain.Session{Token: tok, User: user}, nil
}

// Sign mints a token for user. Tokens carry no expiry.
func (a *Authenticator) Sign(user domain.User) (string, error) {
	claims := Claims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID,
			Issuer:   issuer,
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(a.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns its claims if the signature holds.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserID derives a stable account id from an email address, so signing in
// again with the same address finds the same profile.
func UserID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(strings.TrimSpace(email)))).String()
}

func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return email
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + local[size:]
}
