package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gourmetpress/gourmetpress-backend/api/responses"
	pkgauth "github.com/gourmetpress/gourmetpress-backend/pkg/auth"
	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// actor's identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ctx, err := authenticate(r.Context(), cfg, logg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth seeds the actor when a bearer token is present but lets
// anonymous requests through. A token that is present and invalid is still
// rejected; guest checkout means no credentials, not bad ones.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, err := authenticate(r.Context(), cfg, logg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	return raw
}

func authenticate(ctx context.Context, cfg config.JWTConfig, logg *logger.Logger, token string) (context.Context, error) {
	claims, err := pkgauth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	ctx = WithActor(ctx, claims.ActorID.String(), string(claims.Role))
	if claims.LocationID != nil {
		ctx = WithLocationID(ctx, claims.LocationID.String())
	}

	if logg != nil {
		fields := map[string]any{
			"actor_id":   claims.ActorID.String(),
			"actor_role": string(claims.Role),
		}
		if claims.LocationID != nil {
			fields["location_id"] = claims.LocationID.String()
		}
		ctx = logg.WithFields(ctx, fields)
	}
	return ctx, nil
}
