package reminder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/laraxichu/goteo/internal/domain/infusion"
	"github.com/laraxichu/goteo/internal/platform/logger"
	"github.com/laraxichu/goteo/internal/ports/notify"
	"github.com/laraxichu/goteo/internal/ports/timer"
)

var (
	ErrNoTimeResult             = errors.New("no time result: run a time calculation before setting a reminder")
	ErrPastOrTooSoon            = errors.New("reminder time is in the past or too close; reminder not set")
	ErrTooFar                   = errors.New("reminder time is too far in the future; reminder not set")
	ErrPermissionRequired       = errors.New("notification permission required")
	ErrPermissionDenied         = errors.New("notification permission denied")
	ErrNotificationsUnsupported = errors.New("notifications are not supported")
	ErrInvalidMinutes           = fmt.Errorf("%w: minutes before end must be a non-negative number", infusion.ErrInvalidInput)
	ErrClosed                   = errors.New("reminder scheduler closed")
)

const (
	NotificationTitle   = "Attention: infusion about to finish"
	patientPlaceholder  = "N/A"
	defaultNotifyBudget = 10 * time.Second
)

// maxDelaySeconds es el mayor retraso que entra en un time.Duration.
const maxDelaySeconds = float64(math.MaxInt64) / float64(time.Second)

// State es el estado estable del scheduler.
type State string

const (
	StateIdle      State = "idle"
	StateScheduled State = "scheduled"
)

// Transition registra cómo terminó el último recordatorio.
type Transition string

const (
	TransitionNone       Transition = ""
	TransitionScheduled  Transition = "scheduled"
	TransitionFired      Transition = "fired"
	TransitionCancelled  Transition = "cancelled"
	TransitionSuperseded Transition = "superseded"
)

// CancelStatus es el resultado de Cancel; no hay recordatorio activo no es un error.
type CancelStatus string

const (
	CancelStatusCancelled        CancelStatus = "cancelled"
	CancelStatusNoActiveReminder CancelStatus = "no_active_reminder"
)

// Request son los datos para armar un recordatorio.
type Request struct {
	// Result es el último TimeResult; nil si no hay (o si el último cálculo fue de goteo).
	Result           *infusion.TimeResult
	MinutesBeforeEnd float64
	Permission       notify.Permission
	Recipient        string
}

// Scheduled describe un recordatorio armado.
type Scheduled struct {
	FireAt  time.Time
	Delay   time.Duration
	Message string
}

// Snapshot es una vista de solo lectura del scheduler.
type Snapshot struct {
	State   State      `json:"state"`
	FireAt  *time.Time `json:"fire_at,omitempty"`
	Last    Transition `json:"last_transition,omitempty"`
	Message string     `json:"message,omitempty"`
}

type Options struct {
	Trigger  timer.Trigger
	Notifier notify.Notifier
	Now      func() time.Time
	Logger   logger.Logger

	// NotifyTimeout acota la entrega de la notificación al disparar.
	NotifyTimeout time.Duration
}

// Scheduler mantiene como máximo un recordatorio pendiente.
// Idle -> Scheduled -> (Fired | Cancelled | Superseded) -> Idle.
type Scheduler struct {
	mu sync.Mutex

	trigger       timer.Trigger
	notifier      notify.Notifier
	now           func() time.Time
	log           logger.Logger
	notifyTimeout time.Duration

	// gen identifica al disparo vigente; un callback con gen viejo no notifica.
	gen     uint64
	pending *pending
	last    Transition
	message string
	closed  bool
}

type pending struct {
	gen    uint64
	handle timer.Handle
	fireAt time.Time
	msg    notify.Message
}

func NewScheduler(opts Options) *Scheduler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.NewNop()
	}
	budget := opts.NotifyTimeout
	if budget <= 0 {
		budget = defaultNotifyBudget
	}
	return &Scheduler{
		trigger:       opts.Trigger,
		notifier:      opts.Notifier,
		now:           now,
		log:           lg,
		notifyTimeout: budget,
	}
}

// Schedule arma un recordatorio minutesBeforeEnd minutos antes del fin de la infusión.
// Ante cualquier precondición fallida no se arma nada y el pendiente anterior se conserva.
func (s *Scheduler) Schedule(req Request) (Scheduled, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Scheduled{}, ErrClosed
	}

	if err := checkPermission(req.Permission, s.notifier != nil); err != nil {
		s.message = err.Error()
		return Scheduled{}, err
	}
	if req.Result == nil {
		s.message = ErrNoTimeResult.Error()
		return Scheduled{}, ErrNoTimeResult
	}
	minutes := req.MinutesBeforeEnd
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
		s.message = ErrInvalidMinutes.Error()
		return Scheduled{}, ErrInvalidMinutes
	}

	delaySeconds := req.Result.TotalSeconds - minutes*60
	if !(delaySeconds > 0) {
		s.message = ErrPastOrTooSoon.Error()
		return Scheduled{}, ErrPastOrTooSoon
	}
	if delaySeconds >= maxDelaySeconds {
		s.message = ErrTooFar.Error()
		return Scheduled{}, ErrTooFar
	}
	delay := time.Duration(delaySeconds * float64(time.Second))

	// El pendiente anterior se desarma antes de armar el nuevo.
	if s.pending != nil {
		s.disarmLocked(TransitionSuperseded)
	}

	s.gen++
	gen := s.gen
	fireAt := s.now().Add(delay)
	msg := buildMessage(req)

	h := s.trigger.Arm(delay, func() { s.fire(gen) })
	s.pending = &pending{gen: gen, handle: h, fireAt: fireAt, msg: msg}
	s.last = TransitionScheduled
	s.message = "reminder set for " + fireAt.Format(time.RFC3339)

	s.log.Info("reminder scheduled", map[string]any{
		"recipient": req.Recipient,
		"fire_at":   fireAt.Format(time.RFC3339),
		"delay":     delay.String(),
	})

	return Scheduled{FireAt: fireAt, Delay: delay, Message: s.message}, nil
}

// Cancel desarma el recordatorio pendiente, si lo hay.
func (s *Scheduler) Cancel() CancelStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		s.message = "no active reminder to cancel"
		return CancelStatusNoActiveReminder
	}
	s.disarmLocked(TransitionCancelled)
	s.message = "reminder cancelled"
	return CancelStatusCancelled
}

// Supersede desarma el pendiente porque hubo un cálculo nuevo. Devuelve si había uno.
func (s *Scheduler) Supersede() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		s.message = ""
		return false
	}
	s.disarmLocked(TransitionSuperseded)
	s.message = ""
	return true
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:   StateIdle,
		Last:    s.last,
		Message: s.message,
	}
	if s.pending != nil {
		at := s.pending.fireAt
		snap.State = StateScheduled
		snap.FireAt = &at
	}
	return snap
}

// Close desarma lo pendiente y rechaza nuevos Schedule.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.disarmLocked(TransitionCancelled)
	}
	s.closed = true
}

func (s *Scheduler) disarmLocked(reason Transition) {
	p := s.pending
	s.pending = nil
	s.last = reason
	if p.handle != nil {
		p.handle.Disarm()
	}
	s.log.Debug("reminder disarmed", map[string]any{
		"recipient": p.msg.Recipient,
		"reason":    string(reason),
	})
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.pending == nil || s.pending.gen != gen {
		s.mu.Unlock()
		return
	}
	msg := s.pending.msg
	s.pending = nil
	s.last = TransitionFired
	s.message = "reminder fired"
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Error("reminder notification failed", map[string]any{
			"recipient": msg.Recipient,
			"error":     err,
		})
		return
	}
	s.log.Info("reminder fired", map[string]any{"recipient": msg.Recipient})
}

func checkPermission(p notify.Permission, hasNotifier bool) error {
	if !hasNotifier {
		return ErrNotificationsUnsupported
	}
	switch p {
	case notify.PermissionGranted:
		return nil
	case notify.PermissionDenied:
		return ErrPermissionDenied
	case notify.PermissionUnsupported:
		return ErrNotificationsUnsupported
	default:
		return ErrPermissionRequired
	}
}

func buildMessage(req Request) notify.Message {
	patient := req.Result.PatientName
	if patient == "" {
		patient = patientPlaceholder
	}
	return notify.Message{
		Recipient: req.Recipient,
		Title:     NotificationTitle,
		Body: fmt.Sprintf("The %sml infusion (patient: %s) will finish in %s minutes.",
			formatNumber(req.Result.VolumeMl), patient, formatNumber(req.MinutesBeforeEnd)),
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
