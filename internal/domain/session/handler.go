package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laraxichu/goteo/internal/domain/infusion"
	"github.com/laraxichu/goteo/internal/domain/reminder"
	"github.com/laraxichu/goteo/internal/middleware"
	"github.com/laraxichu/goteo/internal/ports/notify"
)

func RegisterRoutes(r chi.Router, mgr *Manager, defaultMinutesBefore float64) {
	r.Route("/session", func(sr chi.Router) {
		sr.Get("/", getStateHandler(mgr))
		sr.Post("/reset", resetHandler(mgr))
		sr.Put("/mode", setModeHandler(mgr))
	})

	r.Route("/notifications/permission", func(pr chi.Router) {
		pr.Get("/", getPermissionHandler(mgr))
		pr.Post("/", requestPermissionHandler(mgr))
	})

	r.Route("/reminders", func(rr chi.Router) {
		rr.Get("/", getReminderHandler(mgr))
		rr.Post("/", scheduleReminderHandler(mgr, defaultMinutesBefore))
		rr.Delete("/", cancelReminderHandler(mgr))
	})
}

type setModeRequest struct {
	Mode infusion.Mode `json:"mode" enums:"time,flow"`
}

type permissionRequest struct {
	Decision notify.Permission `json:"decision" enums:"granted,denied,default"`
}

type permissionResponse struct {
	Permission notify.Permission `json:"permission"`
	Message    string            `json:"message,omitempty"`
}

// scheduleReminderRequest: minutes_before_end es opcional (usa el default configurado).
type scheduleReminderRequest struct {
	MinutesBeforeEnd *float64 `json:"minutes_before_end"`
}

type scheduleReminderResponse struct {
	FireAt       time.Time `json:"fire_at"`
	DelaySeconds float64   `json:"delay_seconds"`
	Message      string    `json:"message"`
}

type cancelReminderResponse struct {
	Status  reminder.CancelStatus `json:"status"`
	Message string                `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// getStateHandler godoc
// @Summary Estado de la sesión
// @Description Devuelve el modo, el último resultado, el permiso de notificaciones y el recordatorio del usuario.
// @Tags session
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {object} State
// @Failure 401 {object} errorResponse
// @Router /session [get]
func getStateHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, mgr)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.State())
	}
}

// resetHandler godoc
// @Summary Limpiar sesión
// @Description Descarta el último resultado y cancela el recordatorio pendiente.
// @Tags session
// @Produce json
// @Success 200 {object} State
// @Failure 401 {object} errorResponse
// @Router /session/reset [post]
func resetHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, mgr)
		if !ok {
			return
		}
		s.Reset()
		writeJSON(w, http.StatusOK, s.State())
	}
}

// setModeHandler godoc
// @Summary Cambiar modo de cálculo
// @Description Cambia entre cálculo de tiempo y de goteo. Cambiar de modo limpia la sesión.
// @Tags session
// @Accept json
// @Produce json
// @Param payload body setModeRequest true "Modo"
// @Success 200 {object} State
// @Failure 400 {object} errorResponse
// @Router /session/mode [put]
func setModeHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, mgr)
		if !ok {
			return
		}

		var req setModeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := s.SetMode(req.Mode); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.State())
	}
}

// getPermissionHandler godoc
// @Summary Permiso de notificaciones
// @Tags notifications
// @Produce json
// @Success 200 {object} permissionResponse
// @Router /notifications/permission [get]
func getPermissionHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, mgr)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, permissionResponse{Permission: s.Permission()})
	}
}

// requestPermissionHandler godoc
// @Summary Conceder o denegar notificaciones
// @Description Registra la decisión del usuario. Si el servidor no tiene canal de notificaciones responde unsupported.
// @Tags notifications
// @Accept json
// @Produce json
// @Param payload body permissionRequest true "Decisión"
// @Success 200 {object} permissionResponse
// @Failure 400 {object} errorResponse
// @Router /notifications/permission [post]
func requestPermissionHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, mgr)
		if !ok {
			return
		}

		var req permissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		perm, err := s.RequestPermission(req.Decision)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp := permissionResponse{Permission: perm}
		switch perm {
		case notify.PermissionGranted:
			resp.Message = "notification permission granted"
		case notify.PermissionDenied:
			resp.Message = "notification permission denied; enable it to receive reminders"
		case notify.PermissionUnsupported:
			resp.Message = "notifications are not supported by this server"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// getReminderHandler godoc
// @Summary Recordatorio actual
// @Tags reminders
// @Produce json
// @Success 200 {object} reminder.Snapshot
// @Router /reminders [get]
func getReminderHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, mgr)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.State().Reminder)
	}
}

// scheduleReminderHandler godoc
// @Summary Programar recordatorio de fin de infusión
// @Description Programa una notificación minutes_before_end minutos antes de que termine la infusión del último cálculo de tiempo. Reemplaza al recordatorio pendiente.
// @Tags reminders
// @Accept json
// @Produce json
// @Param payload body scheduleReminderRequest false "Minutos antes del fin"
// @Success 201 {object} scheduleReminderResponse
// @Failure 400 {object} errorResponse "minutos inválidos"
// @Failure 409 {object} errorResponse "sin resultado de tiempo / demasiado cerca"
// @Failure 412 {object} errorResponse "permiso requerido o denegado"
// @Failure 501 {object} errorResponse "notificaciones no soportadas"
// @Router /reminders [post]
func scheduleReminderHandler(mgr *Manager, defaultMinutesBefore float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, mgr)
		if !ok {
			return
		}

		var req scheduleReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		minutes := defaultMinutesBefore
		if req.MinutesBeforeEnd != nil {
			minutes = *req.MinutesBeforeEnd
		}

		sch, err := s.ScheduleReminder(minutes)
		if err != nil {
			writeError(w, reminderStatus(err), err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, scheduleReminderResponse{
			FireAt:       sch.FireAt,
			DelaySeconds: sch.Delay.Seconds(),
			Message:      sch.Message,
		})
	}
}

// cancelReminderHandler godoc
// @Summary Cancelar recordatorio
// @Description Cancela el recordatorio pendiente. Si no hay ninguno responde no_active_reminder (no es error).
// @Tags reminders
// @Produce json
// @Success 200 {object} cancelReminderResponse
// @Router /reminders [delete]
func cancelReminderHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, mgr)
		if !ok {
			return
		}

		status := s.CancelReminder()
		writeJSON(w, http.StatusOK, cancelReminderResponse{
			Status:  status,
			Message: s.State().Reminder.Message,
		})
	}
}

func reminderStatus(err error) int {
	switch {
	case errors.Is(err, infusion.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, reminder.ErrNoTimeResult), errors.Is(err, reminder.ErrPastOrTooSoon),
		errors.Is(err, reminder.ErrTooFar):
		return http.StatusConflict
	case errors.Is(err, reminder.ErrPermissionRequired), errors.Is(err, reminder.ErrPermissionDenied):
		return http.StatusPreconditionFailed
	case errors.Is(err, reminder.ErrNotificationsUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, reminder.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func sessionFor(w http.ResponseWriter, r *http.Request, mgr *Manager) (*Session, bool) {
	uid := middleware.UserID(r.Context())
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	s, err := mgr.Get(uid)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, "shutting down")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return s, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON se repite en cada módulo de handlers; todavía no justifica un paquete común.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
