package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/laraxichu/goteo/internal/domain/infusion"
	"github.com/laraxichu/goteo/internal/domain/reminder"
	"github.com/laraxichu/goteo/internal/platform/clock"
	"github.com/laraxichu/goteo/internal/platform/logger"
	"github.com/laraxichu/goteo/internal/ports/notify"
	"github.com/laraxichu/goteo/internal/ports/timer"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrClosed       = errors.New("session manager closed")
)

// State es el estado de aplicación de un usuario: modo, último resultado,
// permiso de notificaciones y recordatorio.
type State struct {
	UserID     string            `json:"user_id"`
	Mode       infusion.Mode     `json:"mode"`
	LastResult *infusion.Result  `json:"last_result,omitempty"`
	Permission notify.Permission `json:"notification_permission"`
	Reminder   reminder.Snapshot `json:"reminder"`
}

// Session agrupa el estado mutable de un usuario. Cada acción del usuario es un método
// (transición) y todas pasan por el mismo mutex.
type Session struct {
	mu sync.Mutex

	userID     string
	mode       infusion.Mode
	last       *infusion.Result
	permission notify.Permission
	supported  bool

	scheduler *reminder.Scheduler

	// lastSeen lo escribe el Manager bajo su propio mutex.
	lastSeen time.Time
}

// ApplyResult registra un cálculo nuevo; cualquier recordatorio pendiente queda reemplazado.
func (s *Session) ApplyResult(r infusion.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.Supersede()
	res := r
	s.last = &res
	s.mode = r.Kind
}

// Reset limpia el resultado y cancela el recordatorio (botón "limpiar").
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.scheduler.Supersede()
	s.last = nil
}

// SetMode cambia el modo de cálculo; cambiar de modo limpia como Reset.
func (s *Session) SetMode(m infusion.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: mode must be time or flow", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == m {
		return nil
	}
	s.mode = m
	s.resetLocked()
	return nil
}

// RequestPermission registra la decisión del usuario sobre notificaciones.
// Si no hay canal de notificaciones el permiso queda en unsupported.
func (s *Session) RequestPermission(decision notify.Permission) (notify.Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.supported {
		s.permission = notify.PermissionUnsupported
		return s.permission, nil
	}

	switch decision {
	case notify.PermissionGranted, notify.PermissionDenied, notify.PermissionDefault:
		s.permission = decision
		return s.permission, nil
	}
	return s.permission, fmt.Errorf("%w: decision must be granted, denied or default", ErrInvalidInput)
}

func (s *Session) Permission() notify.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// ScheduleReminder arma el recordatorio sobre el último resultado de tiempo.
func (s *Session) ScheduleReminder(minutesBeforeEnd float64) (reminder.Scheduled, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tr *infusion.TimeResult
	if s.last != nil && s.last.Time != nil {
		cp := *s.last.Time
		tr = &cp
	}

	return s.scheduler.Schedule(reminder.Request{
		Result:           tr,
		MinutesBeforeEnd: minutesBeforeEnd,
		Permission:       s.permission,
		Recipient:        s.userID,
	})
}

func (s *Session) CancelReminder() reminder.CancelStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Cancel()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		UserID:     s.userID,
		Mode:       s.mode,
		Permission: s.permission,
		Reminder:   s.scheduler.Snapshot(),
	}
	if s.last != nil {
		res := *s.last
		st.LastResult = &res
	}
	return st
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler.Close()
}

type ManagerOptions struct {
	Trigger  timer.Trigger
	Notifier notify.Notifier // nil => notificaciones no soportadas
	Now      func() time.Time
	Logger   logger.Logger

	// IdleTTL descarta sesiones sin uso y sin recordatorio pendiente; 0 no descarta nunca.
	IdleTTL time.Duration
}

// Manager crea sesiones por usuario bajo demanda y las cierra todas en Close.
type Manager struct {
	mu       sync.Mutex
	opts     ManagerOptions
	sessions map[string]*Session
	closed   bool

	stop     chan struct{}
	stopOnce sync.Once
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Trigger == nil {
		opts.Trigger = clock.NewRealTrigger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Manager{
		opts:     opts,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	if opts.IdleTTL > 0 {
		go m.sweepLoop(opts.IdleTTL / 2)
	}
	return m
}

func (m *Manager) Get(userID string) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	now := m.opts.Now()
	if s, ok := m.sessions[userID]; ok {
		s.lastSeen = now
		return s, nil
	}

	supported := m.opts.Notifier != nil
	perm := notify.PermissionDefault
	if !supported {
		perm = notify.PermissionUnsupported
	}

	s := &Session{
		userID:     userID,
		mode:       infusion.ModeTime,
		permission: perm,
		supported:  supported,
		scheduler: reminder.NewScheduler(reminder.Options{
			Trigger:  m.opts.Trigger,
			Notifier: m.opts.Notifier,
			Now:      m.opts.Now,
			Logger:   m.opts.Logger.With(map[string]any{"user_id": userID}),
		}),
		lastSeen: now,
	}
	m.sessions[userID] = s
	return s, nil
}

// ApplyResult permite que el servicio de historial avise de un cálculo nuevo.
func (m *Manager) ApplyResult(userID string, r infusion.Result) error {
	s, err := m.Get(userID)
	if err != nil {
		return err
	}
	s.ApplyResult(r)
	return nil
}

// Sweep descarta las sesiones inactivas desde hace más de IdleTTL que no tienen
// un recordatorio pendiente. Devuelve cuántas descartó.
func (m *Manager) Sweep() int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.opts.Now().Add(-m.opts.IdleTTL)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.lastSeen.After(cutoff) {
			continue
		}
		if s.scheduler.Snapshot().State == reminder.StateScheduled {
			continue
		}
		delete(m.sessions, id)
		idle = append(idle, s)
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.close()
	}
	if len(idle) > 0 {
		m.opts.Logger.Debug("idle sessions evicted", map[string]any{"count": len(idle)})
	}
	return len(idle)
}

func (m *Manager) sweepLoop(every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

// Close desarma todos los recordatorios pendientes. No se recuperan al reiniciar.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.closed = true
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	m.opts.Logger.Info("sessions closed", map[string]any{"count": len(sessions)})
}
