package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laraxichu/goteo/internal/domain/infusion"
	"github.com/laraxichu/goteo/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/calculations", func(cr chi.Router) {
		cr.Post("/", submitHandler(svc))
		cr.Get("/", listHandler(svc))
		cr.Get("/{entryID}", getHandler(svc))
		cr.Delete("/{entryID}", deleteHandler(svc))
	})
}

// numberText acepta un número JSON o un string, y guarda el texto tal cual
// para que la validación reporte por campo los valores no numéricos.
type numberText string

func (n *numberText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = numberText(s)
		return nil
	}
	*n = numberText(b)
	return nil
}

// submitRequest es el cuerpo para realizar un cálculo.
type submitRequest struct {
	Mode             string     `json:"mode" enums:"time,flow"`
	VolumeMl         numberText `json:"volume_ml" swaggertype:"string"`
	DropsPerMl       numberText `json:"drops_per_ml" swaggertype:"string"` // 20, 60 o "custom"
	CustomDropsPerMl numberText `json:"custom_drops_per_ml" swaggertype:"string"`
	SecondsPerDrop   numberText `json:"seconds_per_drop" swaggertype:"string"`
	DesiredHours     numberText `json:"desired_hours" swaggertype:"string"`
	DesiredMinutes   numberText `json:"desired_minutes" swaggertype:"string"`
	DesiredSeconds   numberText `json:"desired_seconds" swaggertype:"string"`
	PatientName      string     `json:"patient_name"`
}

func (r submitRequest) raw() infusion.RawInput {
	return infusion.RawInput{
		Mode:             r.Mode,
		Volume:           string(r.VolumeMl),
		DropsPerMl:       string(r.DropsPerMl),
		CustomDropsPerMl: string(r.CustomDropsPerMl),
		SecondsPerDrop:   string(r.SecondsPerDrop),
		DesiredHours:     string(r.DesiredHours),
		DesiredMinutes:   string(r.DesiredMinutes),
		DesiredSeconds:   string(r.DesiredSeconds),
		PatientName:      r.PatientName,
	}
}

type submitResponse struct {
	EntryID      string          `json:"entry_id,omitempty"`
	Result       infusion.Result `json:"result"`
	Display      string          `json:"display"`
	PersistError string          `json:"persist_error,omitempty"`
}

type entryResponse struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Result    infusion.Result `json:"result"`
	Display   string          `json:"display"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// submitHandler godoc
// @Summary Realizar cálculo
// @Description Calcula el tiempo de infusión (mode=time) o el goteo necesario (mode=flow) y lo guarda en el historial del usuario. Si el guardado falla, responde 200 con el resultado y persist_error.
// @Tags calculations
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param format query string false "Formato de duración: hms, h, hm"
// @Param payload body submitRequest true "Datos de la bolsa y del goteo"
// @Success 201 {object} submitResponse
// @Success 200 {object} submitResponse "calculado pero no guardado"
// @Failure 400 {object} errorResponse "errores por campo"
// @Failure 401 {object} errorResponse
// @Router /calculations [post]
func submitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())
		if uid == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		format, ok := infusion.ParseDisplayFormat(r.URL.Query().Get("format"))
		if !ok {
			writeError(w, http.StatusBadRequest, "format must be hms, h or hm")
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		sub, err := svc.Submit(r.Context(), uid, req.raw())
		if err != nil && !errors.Is(err, ErrPersistence) {
			var verr *infusion.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields})
				return
			}
			if errors.Is(err, ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := submitResponse{
			EntryID: sub.EntryID,
			Result:  sub.Result,
			Display: infusion.Describe(sub.Result, format),
		}
		if err != nil {
			resp.PersistError = "could not save calculation"
			writeJSON(w, http.StatusOK, resp)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// listHandler godoc
// @Summary Historial de cálculos
// @Description Lista los cálculos del usuario, más reciente primero.
// @Tags calculations
// @Produce json
// @Param limit query int false "Máximo de entradas (1-200). Por defecto 50"
// @Param type query string false "Filtrar por tipo: time o flow"
// @Param format query string false "Formato de duración: hms, h, hm"
// @Success 200 {array} entryResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 502 {object} errorResponse "error del almacén"
// @Router /calculations [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())
		if uid == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		format, ok := infusion.ParseDisplayFormat(r.URL.Query().Get("format"))
		if !ok {
			writeError(w, http.StatusBadRequest, "format must be hms, h or hm")
			return
		}

		filter := ListFilter{}
		if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > MaxListLimit {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
				return
			}
			filter.Limit = n
		}
		filter.Kind = infusion.Mode(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))

		items, err := svc.List(r.Context(), uid, filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEntryResponse(e, format))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getHandler godoc
// @Summary Detalle de un cálculo
// @Tags calculations
// @Produce json
// @Param entryID path string true "ID de la entrada"
// @Param format query string false "Formato de duración: hms, h, hm"
// @Success 200 {object} entryResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /calculations/{entryID} [get]
func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())
		if uid == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		format, ok := infusion.ParseDisplayFormat(r.URL.Query().Get("format"))
		if !ok {
			writeError(w, http.StatusBadRequest, "format must be hms, h or hm")
			return
		}

		e, err := svc.Get(r.Context(), uid, chi.URLParam(r, "entryID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponse(e, format))
	}
}

// deleteHandler godoc
// @Summary Borrar un cálculo del historial
// @Tags calculations
// @Param entryID path string true "ID de la entrada"
// @Success 204
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 502 {object} errorResponse "error del almacén"
// @Router /calculations/{entryID} [delete]
func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())
		if uid == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := svc.Delete(r.Context(), uid, chi.URLParam(r, "entryID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPersistence):
		writeError(w, http.StatusBadGateway, "history store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toEntryResponse(e Entry, format infusion.DisplayFormat) entryResponse {
	return entryResponse{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Result:    e.Result,
		Display:   infusion.Describe(e.Result, format),
	}
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
