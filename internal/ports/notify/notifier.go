package notify

import "context"

// Permission refleja el estado del permiso de notificaciones de un usuario.
type Permission string

const (
	PermissionDefault     Permission = "default"
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionUnsupported Permission = "unsupported"
)

func (p Permission) Valid() bool {
	switch p {
	case PermissionDefault, PermissionGranted, PermissionDenied, PermissionUnsupported:
		return true
	}
	return false
}

// Message es una notificación lista para entregar.
type Message struct {
	// Recipient es el usuario dueño del recordatorio (puede ir vacío si el canal es único).
	Recipient string
	Title     string
	Body      string
}

// Notifier entrega notificaciones por algún canal externo (push, log, etc).
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
