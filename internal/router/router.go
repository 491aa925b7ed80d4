package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/laraxichu/goteo/docs"
	mem "github.com/laraxichu/goteo/internal/adapters/storage/memory"
	"github.com/laraxichu/goteo/internal/domain/history"
	"github.com/laraxichu/goteo/internal/domain/infusion"
	"github.com/laraxichu/goteo/internal/domain/session"
	"github.com/laraxichu/goteo/internal/middleware"
	"github.com/laraxichu/goteo/internal/platform/logger"
	"github.com/laraxichu/goteo/internal/ports/auth"
)

const defaultReminderMinutes = 5

type Options struct {
	AuthVerifier auth.AuthVerifier // nil => modo dev (X-Debug-User-ID)

	// AllowAnonymous asigna un id por cookie a quien llega sin identidad.
	AllowAnonymous bool

	// Opcional: si no viene, historial in-memory.
	History history.Repository

	// Opcional: si no viene, se crea uno sin notificador (permiso "unsupported").
	// Quien lo pasa es responsable de cerrarlo.
	Sessions *session.Manager

	Calculator *infusion.Calculator
	Logger     logger.Logger

	// Minutos antes del fin para el recordatorio cuando el request no los indica;
	// sin setear (<= 0) vale 5, igual que config.Default.
	DefaultReminderMinutes float64
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	repo := opts.History
	if repo == nil {
		repo = mem.NewHistoryRepo()
	}

	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewManager(session.ManagerOptions{Logger: log})
	}

	minutes := opts.DefaultReminderMinutes
	if minutes <= 0 {
		minutes = defaultReminderMinutes
	}

	historySvc := history.NewService(repo, opts.Calculator, sessions, log)

	// Solo las rutas de dominio necesitan identidad; /health y /swagger no crean cookies.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthContext(middleware.AuthOptions{
			Verifier:       opts.AuthVerifier,
			AllowAnonymous: opts.AllowAnonymous,
			Logger:         log,
		}))

		history.RegisterRoutes(r, historySvc)
		session.RegisterRoutes(r, sessions, minutes)
	})

	return r
}
