package infusion

import (
	"fmt"
	"math"
	"time"
)

// MaxTotalSeconds es la duración máxima de un TimeResult: la que entra en un time.Duration.
const MaxTotalSeconds = float64(math.MaxInt64 / int64(time.Second))

// Calculator traduce datos validados a un TimeResult o FlowResult.
// No tiene estado salvo el reloj usado para el timestamp.
type Calculator struct {
	now func() time.Time
}

func NewCalculator() *Calculator {
	return &Calculator{now: time.Now}
}

// NewCalculatorWithClock permite fijar el reloj (tests).
func NewCalculatorWithClock(now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// ComputeTime calcula cuánto dura la bolsa con el goteo dado.
//
// Los segundos se redondean al entero más cercano; si el redondeo llega a 60
// se acarrea a minutos (y de minutos a horas) para que la tripleta siga en rango.
func (c *Calculator) ComputeTime(volumeMl, dropsPerMl, secondsPerDrop float64) (TimeResult, error) {
	verr := &ValidationError{}
	requirePositive(verr, FieldVolume, volumeMl)
	requirePositive(verr, FieldDropsPerMl, dropsPerMl)
	requirePositive(verr, FieldSecondsPerDrop, secondsPerDrop)
	if err := verr.orNil(); err != nil {
		return TimeResult{}, err
	}

	totalDrops := volumeMl * dropsPerMl
	totalSeconds := totalDrops * secondsPerDrop
	if !isFinite(totalSeconds) || totalSeconds > MaxTotalSeconds {
		verr.add(FieldVolume, msgOutOfRange)
		return TimeResult{}, verr
	}

	hours := int(math.Floor(totalSeconds / 3600))
	remainder := math.Mod(totalSeconds, 3600)
	minutes := int(math.Floor(remainder / 60))
	seconds := int(math.Round(math.Mod(remainder, 60)))

	if seconds == 60 {
		seconds = 0
		minutes++
	}
	if minutes == 60 {
		minutes = 0
		hours++
	}

	return TimeResult{
		TotalSeconds:   totalSeconds,
		Hours:          hours,
		Minutes:        minutes,
		Seconds:        seconds,
		VolumeMl:       volumeMl,
		DropsPerMl:     dropsPerMl,
		SecondsPerDrop: secondsPerDrop,
		Timestamp:      c.now(),
	}, nil
}

// ComputeFlowRate calcula el goteo (gotas/min y ml/h) para vaciar la bolsa en la duración deseada.
func (c *Calculator) ComputeFlowRate(volumeMl, dropsPerMl float64, desired Duration) (FlowResult, error) {
	verr := &ValidationError{}
	requirePositive(verr, FieldVolume, volumeMl)
	requirePositive(verr, FieldDropsPerMl, dropsPerMl)
	requireNonNegative(verr, FieldDesiredHours, desired.Hours)
	requireNonNegative(verr, FieldDesiredMinutes, desired.Minutes)
	requireNonNegative(verr, FieldDesiredSeconds, desired.Seconds)

	totalDesiredSeconds := desired.TotalSeconds()
	if len(verr.Fields) == 0 {
		switch {
		case !(totalDesiredSeconds > 0):
			verr.add(FieldDesiredDuration, msgZeroTotal)
		case !isFinite(totalDesiredSeconds):
			verr.add(FieldDesiredDuration, msgOutOfRange)
		}
	}
	if err := verr.orNil(); err != nil {
		return FlowResult{}, err
	}

	totalDropsInBag := volumeMl * dropsPerMl
	dropsPerMinute := round2((totalDropsInBag / totalDesiredSeconds) * 60)
	mlPerHour := round2((volumeMl / totalDesiredSeconds) * 3600)
	if !isFinite(dropsPerMinute) || !isFinite(mlPerHour) {
		verr.add(FieldVolume, msgOutOfRange)
		return FlowResult{}, verr
	}

	return FlowResult{
		DropsPerMinute: dropsPerMinute,
		MlPerHour:      mlPerHour,
		VolumeMl:       volumeMl,
		DropsPerMl:     dropsPerMl,
		Desired:        desired,
		Timestamp:      c.now(),
	}, nil
}

// Compute despacha según el modo y adjunta el nombre del paciente.
func (c *Calculator) Compute(in Input) (Result, error) {
	switch in.Mode {
	case ModeTime:
		r, err := c.ComputeTime(in.VolumeMl, in.DropsPerMl, in.SecondsPerDrop)
		if err != nil {
			return Result{}, err
		}
		r.PatientName = in.PatientName
		return NewTimeResult(r), nil
	case ModeFlow:
		r, err := c.ComputeFlowRate(in.VolumeMl, in.DropsPerMl, in.Desired)
		if err != nil {
			return Result{}, err
		}
		r.PatientName = in.PatientName
		return NewFlowResult(r), nil
	default:
		return Result{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, in.Mode)
	}
}

func requirePositive(verr *ValidationError, field string, v float64) {
	if !isFinite(v) || v <= 0 {
		verr.add(field, msgPositive)
	}
}

func requireNonNegative(verr *ValidationError, field string, v float64) {
	if !isFinite(v) || v < 0 {
		verr.add(field, msgNonNegative)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
