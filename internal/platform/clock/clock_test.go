package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealTrigger_Fires(t *testing.T) {
	done := make(chan struct{})
	NewRealTrigger().Arm(5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not fire")
	}
}

func TestRealTrigger_DisarmPreventsFire(t *testing.T) {
	fired := make(chan struct{}, 1)
	h := NewRealTrigger().Arm(50*time.Millisecond, func() { fired <- struct{}{} })

	require.True(t, h.Disarm())
	assert.False(t, h.Disarm(), "second disarm must report nothing pending")

	select {
	case <-fired:
		t.Fatal("disarmed trigger fired")
	case <-time.After(120 * time.Millisecond):
	}
}
