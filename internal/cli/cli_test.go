package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraxichu/goteo/internal/domain/infusion"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true

	calc := infusion.NewCalculatorWithClock(func() time.Time {
		return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	})
	cmd := NewApp(calc).Command()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTimeCommand(t *testing.T) {
	out, _, err := runCLI(t, "time", "--volume", "500", "--seconds-per-drop", "10.34", "--patient", "Juan")
	require.NoError(t, err)

	assert.Contains(t, out, "Infusion time")
	assert.Contains(t, out, "28 h 43 min 20 s")
	assert.Contains(t, out, "500 ml · 20 drops/ml · 10.34 s/drop")
	assert.Contains(t, out, "patient: Juan")
}

func TestTimeCommand_DecimalHours(t *testing.T) {
	out, _, err := runCLI(t, "time", "--volume", "500", "--drip-set", "20", "--seconds-per-drop", "10.34", "--format", "h")
	require.NoError(t, err)
	assert.Contains(t, out, "28.72 h")
}

func TestTimeCommand_CustomDripSet(t *testing.T) {
	out, _, err := runCLI(t, "time", "--volume", "100", "--drip-set", "custom", "--custom-drip-set", "15", "--seconds-per-drop", "2")
	require.NoError(t, err)
	// 100 * 15 * 2 = 3000 s
	assert.Contains(t, out, "0 h 50 min 0 s")
}

func TestTimeCommand_ValidationListsFields(t *testing.T) {
	_, errOut, err := runCLI(t, "time", "--volume", "abc", "--seconds-per-drop", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, infusion.ErrInvalidInput)

	assert.Contains(t, errOut, "greater than zero")
	assert.Contains(t, errOut, "volume_ml:")
	assert.Contains(t, errOut, "seconds_per_drop:")
}

func TestTimeCommand_BadFormat(t *testing.T) {
	_, _, err := runCLI(t, "time", "--volume", "500", "--seconds-per-drop", "1", "--format", "days")
	assert.ErrorContains(t, err, "--format")
}

func TestFlowCommand(t *testing.T) {
	out, _, err := runCLI(t, "flow", "--volume", "1000", "--hours", "8")
	require.NoError(t, err)

	assert.Contains(t, out, "Required flow")
	assert.Contains(t, out, "41.67 drops/min")
	assert.Contains(t, out, "125.00 ml/h")
}

func TestFlowCommand_ZeroDuration(t *testing.T) {
	_, errOut, err := runCLI(t, "flow", "--volume", "1000", "--hours", "0", "--minutes", "0")
	require.Error(t, err)
	assert.Contains(t, errOut, "desired_duration:")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "goteo dev")
}
