package pushover

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/laraxichu/goteo/internal/platform/httpclient"
	"github.com/laraxichu/goteo/internal/ports/notify"
)

const DefaultURL = "https://api.pushover.net/1/messages.json"

var ErrNotConfigured = errors.New("pushover not configured")

type Config struct {
	Token   string
	User    string
	URL     string // vacío = DefaultURL
	Timeout time.Duration
}

// Notifier entrega los recordatorios por Pushover.
// Todos van a la cuenta de Config.User; Recipient no se usa.
type Notifier struct {
	http  *httpclient.Client
	url   string
	token string
	user  string
}

func New(cfg Config) (*Notifier, error) {
	token, user := strings.TrimSpace(cfg.Token), strings.TrimSpace(cfg.User)
	if token == "" || user == "" {
		return nil, ErrNotConfigured
	}

	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		u = DefaultURL
	}

	c, err := httpclient.New(httpclient.Options{Timeout: cfg.Timeout, UserAgent: "goteo"})
	if err != nil {
		return nil, err
	}

	return &Notifier{http: c, url: u, token: token, user: user}, nil
}

type apiResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

func (n *Notifier) Notify(ctx context.Context, msg notify.Message) error {
	params := url.Values{}
	params.Set("token", n.token)
	params.Set("user", n.user)
	params.Set("title", msg.Title)
	params.Set("message", msg.Body)
	params.Set("priority", "1")

	var out apiResponse
	if err := n.http.PostForm(ctx, n.url, params, &out); err != nil {
		return fmt.Errorf("pushover send: %w", err)
	}
	if out.Status != 1 {
		return fmt.Errorf("pushover rejected message: %s", strings.Join(out.Errors, "; "))
	}
	return nil
}

var _ notify.Notifier = (*Notifier)(nil)
