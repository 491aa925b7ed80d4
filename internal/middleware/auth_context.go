package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laraxichu/goteo/internal/platform/logger"
	"github.com/laraxichu/goteo/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

const (
	DebugUserHeader     = "X-Debug-User-ID"
	AnonymousCookieName = "goteo_uid"
	anonymousCookieTTL  = 365 * 24 * time.Hour
)

type AuthOptions struct {
	// Verifier valida bearer tokens. Si es nil se acepta X-Debug-User-ID (modo dev).
	Verifier auth.AuthVerifier

	// AllowAnonymous asigna un id anónimo persistido en cookie a quien llega sin identidad,
	// para que el historial quede igual particionado por usuario.
	AllowAnonymous bool

	Logger logger.Logger
}

// AuthContext resuelve la identidad del request en este orden:
// - Bearer token verificado (si hay Verifier)
// - X-Debug-User-ID (solo sin Verifier)
// - cookie anónima (solo con AllowAnonymous; si no existe se crea)
// Si no hay identidad el request sigue igual; los handlers responden 401.
func AuthContext(opts AuthOptions) func(http.Handler) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := resolveClaims(w, r, opts, log); ok {
				ctx := context.WithValue(r.Context(), claimsKey, claims)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveClaims(w http.ResponseWriter, r *http.Request, opts AuthOptions, log logger.Logger) (auth.Claims, bool) {
	if opts.Verifier != nil {
		if token := bearerToken(r.Header.Get("Authorization")); token != "" {
			claims, err := opts.Verifier.Verify(r.Context(), token)
			if err == nil && strings.TrimSpace(claims.UserID) != "" {
				return claims, true
			}
			log.Debug("bearer token rejected", map[string]any{"error": err})
		}
	} else if uid := strings.TrimSpace(r.Header.Get(DebugUserHeader)); uid != "" {
		return auth.Claims{UserID: uid}, true
	}

	if !opts.AllowAnonymous {
		return auth.Claims{}, false
	}

	if c, err := r.Cookie(AnonymousCookieName); err == nil {
		if uid := strings.TrimSpace(c.Value); uid != "" {
			return auth.Claims{UserID: uid, Anonymous: true}, true
		}
	}

	uid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     AnonymousCookieName,
		Value:    uid,
		Path:     "/",
		Expires:  time.Now().Add(anonymousCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	log.Info("anonymous user assigned", map[string]any{"user_id": uid})
	return auth.Claims{UserID: uid, Anonymous: true}, true
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// UserID devuelve el usuario autenticado del request, o "" si no hay.
func UserID(ctx context.Context) string {
	c, ok := GetClaims(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(c.UserID)
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
