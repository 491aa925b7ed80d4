package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/laraxichu/goteo/internal/platform/httpclient"
	"github.com/laraxichu/goteo/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("auth verifier not configured")
	ErrUnauthorized  = errors.New("token rejected")
	ErrUpstream      = errors.New("identity provider error")
)

// Config del proveedor de identidad. Viene de auth.verify_url y auth.api_key.
type Config struct {
	VerifyURL string
	APIKey    string

	// Header de la API key; vacío = "X-Api-Key".
	APIKeyHeader string
	Timeout      time.Duration
}

// Verifier implementa auth.AuthVerifier con un POST {"token": ...} al proveedor.
type Verifier struct {
	http         *httpclient.Client
	verifyURL    string
	apiKey       string
	apiKeyHeader string
}

func NewVerifier(cfg Config) (*Verifier, error) {
	verifyURL := strings.TrimSpace(cfg.VerifyURL)
	if verifyURL == "" {
		return nil, ErrNotConfigured
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c, err := httpclient.New(httpclient.Options{Timeout: timeout, UserAgent: "goteo"})
	if err != nil {
		return nil, err
	}

	return &Verifier{
		http:         c,
		verifyURL:    verifyURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

type verifyResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	headers := map[string]string{"Authorization": "Bearer " + token}
	if v.apiKey != "" {
		headers[v.apiKeyHeader] = v.apiKey
	}

	var out verifyResponse
	err := v.http.DoJSON(ctx, http.MethodPost, v.verifyURL, headers, map[string]string{"token": token}, &out)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
	}, nil
}

var _ auth.AuthVerifier = (*Verifier)(nil)
