package clock

import (
	"time"

	"github.com/laraxichu/goteo/internal/ports/timer"
)

// RealTrigger arma disparos con time.AfterFunc.
// El callback corre en su propia goroutine.
type RealTrigger struct{}

func NewRealTrigger() RealTrigger {
	return RealTrigger{}
}

func (RealTrigger) Arm(delay time.Duration, fn func()) timer.Handle {
	if delay < 0 {
		delay = 0
	}
	return afterFuncHandle{t: time.AfterFunc(delay, fn)}
}

type afterFuncHandle struct {
	t *time.Timer
}

func (h afterFuncHandle) Disarm() bool {
	return h.t.Stop()
}
