package infusion

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Nombres de campo usados en los errores de validación (coinciden con el JSON de la API).
const (
	FieldMode             = "mode"
	FieldVolume           = "volume_ml"
	FieldDropsPerMl       = "drops_per_ml"
	FieldCustomDropsPerMl = "custom_drops_per_ml"
	FieldSecondsPerDrop   = "seconds_per_drop"
	FieldDesiredHours     = "desired_hours"
	FieldDesiredMinutes   = "desired_minutes"
	FieldDesiredSeconds   = "desired_seconds"
	FieldDesiredDuration  = "desired_duration"
)

// DripSetCustom selecciona el valor de CustomDropsPerMl.
const DripSetCustom = "custom"

const (
	msgPositive    = "must be a number greater than zero"
	msgNonNegative = "must be a number greater than or equal to zero"
	msgZeroTotal   = "total desired time must be greater than zero"
	msgOutOfRange  = "result is out of range; check the values entered"
)

// ValidationError lista todos los campos inválidos de un cálculo.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid input: enter valid numeric values greater than zero in all required fields (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// RawInput son los valores tal como llegan del formulario o de la CLI.
type RawInput struct {
	Mode             string
	Volume           string
	DropsPerMl       string // "20", "60", un número o "custom"
	CustomDropsPerMl string
	SecondsPerDrop   string
	DesiredHours     string
	DesiredMinutes   string
	DesiredSeconds   string
	PatientName      string
}

// Validate revisa todos los campos requeridos por el modo (sin cortar en el primero)
// y devuelve el Input numérico o un *ValidationError.
func Validate(raw RawInput) (Input, error) {
	verr := &ValidationError{}

	mode := Mode(strings.ToLower(strings.TrimSpace(raw.Mode)))
	if mode == "" {
		mode = ModeTime
	}
	if !mode.Valid() {
		verr.add(FieldMode, "must be time or flow")
	}

	in := Input{
		Mode:        mode,
		PatientName: strings.TrimSpace(raw.PatientName),
	}

	in.VolumeMl = positiveField(verr, FieldVolume, raw.Volume)

	if strings.EqualFold(strings.TrimSpace(raw.DropsPerMl), DripSetCustom) {
		in.DropsPerMl = positiveField(verr, FieldCustomDropsPerMl, raw.CustomDropsPerMl)
	} else {
		in.DropsPerMl = positiveField(verr, FieldDropsPerMl, raw.DropsPerMl)
	}

	switch mode {
	case ModeTime:
		in.SecondsPerDrop = positiveField(verr, FieldSecondsPerDrop, raw.SecondsPerDrop)
	case ModeFlow:
		h, okH := nonNegativeField(verr, FieldDesiredHours, raw.DesiredHours)
		m, okM := nonNegativeField(verr, FieldDesiredMinutes, raw.DesiredMinutes)
		s, okS := nonNegativeField(verr, FieldDesiredSeconds, raw.DesiredSeconds)
		in.Desired = Duration{Hours: h, Minutes: m, Seconds: s}
		if okH && okM && okS && in.Desired.TotalSeconds() <= 0 {
			verr.add(FieldDesiredDuration, msgZeroTotal)
		}
	}

	if err := verr.orNil(); err != nil {
		return Input{}, err
	}
	return in, nil
}

func positiveField(verr *ValidationError, field, raw string) float64 {
	v, ok := parseNumber(raw)
	if !ok || v <= 0 {
		verr.add(field, msgPositive)
		return 0
	}
	return v
}

// Los componentes de la duración pueden omitirse (cuentan como cero).
func nonNegativeField(verr *ValidationError, field, raw string) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, true
	}
	v, ok := parseNumber(raw)
	if !ok || v < 0 {
		verr.add(field, msgNonNegative)
		return 0, false
	}
	return v, true
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
