package infusion

import "time"

// Mode indica qué se calcula a partir de los datos de la bolsa.
type Mode string

const (
	ModeTime Mode = "time" // duración total a partir de segundos por gota
	ModeFlow Mode = "flow" // goteo necesario para una duración deseada
)

func (m Mode) Valid() bool {
	return m == ModeTime || m == ModeFlow
}

// Sets de goteo estándar (gotas por ml).
const (
	DripSetMacro = 20
	DripSetMicro = 60
)

// Duration es la duración deseada de la infusión, tal como la ingresa el usuario.
type Duration struct {
	Hours   float64 `json:"hours"`
	Minutes float64 `json:"minutes"`
	Seconds float64 `json:"seconds"`
}

func (d Duration) TotalSeconds() float64 {
	return d.Hours*3600 + d.Minutes*60 + d.Seconds
}

// Input son los datos ya validados de un cálculo.
type Input struct {
	Mode           Mode
	VolumeMl       float64
	DropsPerMl     float64
	SecondsPerDrop float64  // solo ModeTime
	Desired        Duration // solo ModeFlow
	PatientName    string   // vacío = sin paciente
}

// TimeResult es el resultado de calcular la duración de una infusión.
type TimeResult struct {
	TotalSeconds float64 `json:"total_seconds"`
	Hours        int     `json:"hours"`
	Minutes      int     `json:"minutes"`
	Seconds      int     `json:"seconds"`

	VolumeMl       float64 `json:"volume_ml"`
	DropsPerMl     float64 `json:"drops_per_ml"`
	SecondsPerDrop float64 `json:"seconds_per_drop"`

	PatientName string    `json:"patient_name,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// FlowResult es el resultado de calcular el goteo para una duración deseada.
type FlowResult struct {
	DropsPerMinute float64 `json:"drops_per_minute"`
	MlPerHour      float64 `json:"ml_per_hour"`

	VolumeMl   float64  `json:"volume_ml"`
	DropsPerMl float64  `json:"drops_per_ml"`
	Desired    Duration `json:"desired_duration"`

	PatientName string    `json:"patient_name,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Result es la unión etiquetada de ambos resultados: exactamente uno de Time/Flow viene seteado.
type Result struct {
	Kind Mode        `json:"type"`
	Time *TimeResult `json:"time,omitempty"`
	Flow *FlowResult `json:"flow,omitempty"`
}

func NewTimeResult(r TimeResult) Result {
	return Result{Kind: ModeTime, Time: &r}
}

func NewFlowResult(r FlowResult) Result {
	return Result{Kind: ModeFlow, Flow: &r}
}

// Valid verifica que la etiqueta coincida con la única variante presente.
func (r Result) Valid() bool {
	switch r.Kind {
	case ModeTime:
		return r.Time != nil && r.Flow == nil
	case ModeFlow:
		return r.Flow != nil && r.Time == nil
	}
	return false
}

func (r Result) Timestamp() time.Time {
	switch {
	case r.Time != nil:
		return r.Time.Timestamp
	case r.Flow != nil:
		return r.Flow.Timestamp
	}
	return time.Time{}
}

func (r Result) VolumeMl() float64 {
	switch {
	case r.Time != nil:
		return r.Time.VolumeMl
	case r.Flow != nil:
		return r.Flow.VolumeMl
	}
	return 0
}

func (r Result) PatientName() string {
	switch {
	case r.Time != nil:
		return r.Time.PatientName
	case r.Flow != nil:
		return r.Flow.PatientName
	}
	return ""
}
