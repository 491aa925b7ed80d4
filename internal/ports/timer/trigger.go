package timer

import "time"

// Handle identifica un disparo armado.
type Handle interface {
	// Disarm cancela el disparo. Devuelve false si ya se ejecutó o ya estaba cancelado.
	Disarm() bool
}

// Trigger arma callbacks diferidos de un solo disparo.
// fn nunca debe ejecutarse dentro de la llamada a Arm.
type Trigger interface {
	Arm(delay time.Duration, fn func()) Handle
}
