package infusion

import (
	"fmt"
	"strings"
)

// DisplayFormat es la forma de mostrar un TimeResult.
type DisplayFormat string

const (
	FormatHMS          DisplayFormat = "hms" // horas, minutos y segundos
	FormatDecimalHours DisplayFormat = "h"   // horas con dos decimales
	FormatHM           DisplayFormat = "hm"  // horas y minutos
)

func ParseDisplayFormat(s string) (DisplayFormat, bool) {
	switch DisplayFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatHMS:
		return FormatHMS, true
	case FormatDecimalHours:
		return FormatDecimalHours, true
	case FormatHM:
		return FormatHM, true
	}
	return "", false
}

// FormatDuration arma el texto de duración usando solo los campos enteros del resultado.
func FormatDuration(r TimeResult, f DisplayFormat) string {
	switch f {
	case FormatDecimalHours:
		total := float64(r.Hours) + float64(r.Minutes)/60 + float64(r.Seconds)/3600
		return fmt.Sprintf("%.2f h", total)
	case FormatHM:
		return fmt.Sprintf("%d h %d min", r.Hours, r.Minutes)
	default:
		return fmt.Sprintf("%d h %d min %d s", r.Hours, r.Minutes, r.Seconds)
	}
}

// Describe resume cualquier resultado en una línea.
func Describe(r Result, f DisplayFormat) string {
	switch {
	case r.Time != nil:
		return "infusion will last approximately " + FormatDuration(*r.Time, f)
	case r.Flow != nil:
		return fmt.Sprintf("required flow: %.2f drops/min (%.2f ml/h)", r.Flow.DropsPerMinute, r.Flow.MlPerHour)
	}
	return ""
}
