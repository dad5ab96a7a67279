package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

type principalKey struct{}

type Claims struct {
	UID  string `json:"id,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID prefers the custom id claim, then sub.
func (c *Claims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}

type Authenticator struct {
	secret []byte
	log    *logger.Logger
}

func NewAuthenticator(secret string, log *logger.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), log: log}
}

// Authenticate verifies the Bearer token and stores the caller in the request context.
func (a *Authenticator) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, err := a.parse(r.Header.Get("Authorization"))
		if err != nil {
			a.log.WithContext(r.Context()).Warn("Authentication failed",
				"reason", err.Error(),
				"path", r.URL.Path,
			)
			writeRejection(w, apperrors.Unauthorized("Authentication required"))
			return
		}

		next(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)), ps)
	}
}

// RequireRole must run inside Authenticate.
func (a *Authenticator) RequireRole(role string, next httprouter.Handle) httprouter.Handle {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, _ := PrincipalFromContext(r.Context())
		if principal.Role != role {
			writeRejection(w, apperrors.Forbidden("Insufficient permissions"))
			return
		}
		next(w, r, ps)
	})
}

func (a *Authenticator) parse(header string) (model.Principal, error) {
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(tokenString) == "" {
		return model.Principal{}, errors.New("missing bearer token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Principal{}, err
	}
	if !token.Valid {
		return model.Principal{}, errors.New("invalid token")
	}

	userID := claims.UserID()
	if userID == "" {
		return model.Principal{}, errors.New("token carries no subject")
	}

	role := claims.Role
	if role == "" {
		role = model.RoleUser
	}
	return model.Principal{ID: userID, Role: role}, nil
}

// IssueToken signs an HS256 token for the given identity.
func IssueToken(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ContextWithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(model.Principal)
	return p, ok
}
