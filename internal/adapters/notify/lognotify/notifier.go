package lognotify

import (
	"context"

	"github.com/laraxichu/goteo/internal/platform/logger"
	"github.com/laraxichu/goteo/internal/ports/notify"
)

// Notifier escribe cada recordatorio en el log. Es el canal por defecto en desarrollo.
type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &Notifier{log: log}
}

func (n *Notifier) Notify(_ context.Context, msg notify.Message) error {
	n.log.Info("notification", map[string]any{
		"recipient": msg.Recipient,
		"title":     msg.Title,
		"body":      msg.Body,
	})
	return nil
}

var _ notify.Notifier = (*Notifier)(nil)
