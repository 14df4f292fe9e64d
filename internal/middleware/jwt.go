package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
	"github.com/SARVESHVARADKAR123/courtroom/internal/transport"
)

var (
	errMissingToken = errors.New("missing token")
	errTokenFormat  = errors.New("invalid token format")
	errInvalidToken = errors.New("invalid token")
)

// JWT requires an HS256 bearer token signed with secret. Issuer and audience are
// checked when non-empty. An empty secret disables authentication.
func JWT(secret, issuer, audience string) func(http.Handler) http.Handler {
	if secret == "" {
		return func(next http.Handler) http.Handler { return next }
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	parser := jwt.NewParser(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractToken(r)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}

			var claims jwt.RegisteredClaims
			token, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				observability.GetLogger(r.Context()).Debug("jwt_rejected", zap.Error(err))
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", errInvalidToken.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(InjectSubject(r.Context(), claims.Subject)))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", errTokenFormat
	}
	return token, nil
}
