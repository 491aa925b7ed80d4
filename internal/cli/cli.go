// Package cli es la interfaz de línea de comandos: los mismos cálculos que la API,
// sin historial ni recordatorios.
package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/laraxichu/goteo/internal/domain/infusion"
)

var (
	// Version se setea en build.
	Version = "dev"
	// Commit se setea en build.
	Commit = "none"
)

var (
	colorHeader = color.New(color.Bold)
	colorResult = color.New(color.FgGreen, color.Bold)
	colorMuted  = color.New(color.Faint)
	colorError  = color.New(color.FgRed)
)

type App struct {
	calc    *infusion.Calculator
	root    *cobra.Command
	noColor bool
}

func NewApp(calc *infusion.Calculator) *App {
	if calc == nil {
		calc = infusion.NewCalculator()
	}
	a := &App{calc: calc}

	a.root = &cobra.Command{
		Use:   "goteo",
		Short: "IV infusion calculator",
		Long: `goteo calcula cuánto dura una infusión IV a partir del volumen y el goteo,
o qué goteo hace falta para pasar un volumen en un tiempo dado.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				color.NoColor = true
			}
		},
	}
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.timeCmd())
	a.root.AddCommand(a.flowCmd())

	return a
}

// Command expone el comando raíz (tests, completions).
func (a *App) Command() *cobra.Command {
	return a.root
}

// Execute corre el comando. Los errores de validación ya salieron por campo;
// el resto se imprime acá.
func (a *App) Execute() error {
	err := a.root.Execute()
	if err != nil && !errors.Is(err, infusion.ErrInvalidInput) {
		colorError.Fprintln(a.root.ErrOrStderr(), "error:", err)
	}
	return err
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "goteo %s (commit: %s)\n", Version, Commit)
		},
	}
}

type bagFlags struct {
	volume     string
	dripSet    string
	customDrip string
	patient    string
}

func (b *bagFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.volume, "volume", "", "Volume to infuse in ml")
	cmd.Flags().StringVar(&b.dripSet, "drip-set", "20", "Drops per ml: 20 (macro), 60 (micro) or custom")
	cmd.Flags().StringVar(&b.customDrip, "custom-drip-set", "", "Drops per ml when --drip-set=custom")
	cmd.Flags().StringVar(&b.patient, "patient", "", "Patient name (optional)")
}

func (a *App) timeCmd() *cobra.Command {
	var (
		bag            bagFlags
		secondsPerDrop string
		format         string
	)

	cmd := &cobra.Command{
		Use:   "time",
		Short: "Compute how long an infusion will last",
		Example: `  goteo time --volume 500 --drip-set 20 --seconds-per-drop 10.34
  goteo time --volume 250 --drip-set custom --custom-drip-set 15 --seconds-per-drop 2 --format h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, ok := infusion.ParseDisplayFormat(format)
			if !ok {
				return errors.New("--format must be hms, h or hm")
			}
			return a.compute(cmd.OutOrStdout(), cmd.ErrOrStderr(), infusion.RawInput{
				Mode:             string(infusion.ModeTime),
				Volume:           bag.volume,
				DropsPerMl:       bag.dripSet,
				CustomDropsPerMl: bag.customDrip,
				SecondsPerDrop:   secondsPerDrop,
				PatientName:      bag.patient,
			}, f)
		},
	}

	bag.register(cmd)
	cmd.Flags().StringVar(&secondsPerDrop, "seconds-per-drop", "", "Seconds between drops")
	cmd.Flags().StringVar(&format, "format", string(infusion.FormatHMS), "Duration format: hms, h or hm")
	return cmd
}

func (a *App) flowCmd() *cobra.Command {
	var (
		bag                     bagFlags
		hours, minutes, seconds string
	)

	cmd := &cobra.Command{
		Use:     "flow",
		Short:   "Compute the drip rate needed for a desired duration",
		Example: `  goteo flow --volume 1000 --drip-set 20 --hours 8`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.compute(cmd.OutOrStdout(), cmd.ErrOrStderr(), infusion.RawInput{
				Mode:             string(infusion.ModeFlow),
				Volume:           bag.volume,
				DropsPerMl:       bag.dripSet,
				CustomDropsPerMl: bag.customDrip,
				DesiredHours:     hours,
				DesiredMinutes:   minutes,
				DesiredSeconds:   seconds,
				PatientName:      bag.patient,
			}, infusion.FormatHMS)
		},
	}

	bag.register(cmd)
	cmd.Flags().StringVar(&hours, "hours", "", "Desired hours")
	cmd.Flags().StringVar(&minutes, "minutes", "", "Desired minutes")
	cmd.Flags().StringVar(&seconds, "seconds", "", "Desired seconds")
	return cmd
}

func (a *App) compute(out, errOut io.Writer, raw infusion.RawInput, f infusion.DisplayFormat) error {
	in, err := infusion.Validate(raw)
	if err != nil {
		printValidation(errOut, err)
		return err
	}

	res, err := a.calc.Compute(in)
	if err != nil {
		printValidation(errOut, err)
		return err
	}

	printResult(out, res, f)
	return nil
}

func printResult(w io.Writer, r infusion.Result, f infusion.DisplayFormat) {
	switch r.Kind {
	case infusion.ModeTime:
		t := r.Time
		colorHeader.Fprintln(w, "Infusion time")
		colorResult.Fprintln(w, "  "+infusion.FormatDuration(*t, f))
		colorMuted.Fprintf(w, "  %s ml · %s drops/ml · %s s/drop · %s s total\n",
			num(t.VolumeMl), num(t.DropsPerMl), num(t.SecondsPerDrop), num(t.TotalSeconds))
		if t.PatientName != "" {
			colorMuted.Fprintf(w, "  patient: %s\n", t.PatientName)
		}
	case infusion.ModeFlow:
		fl := r.Flow
		colorHeader.Fprintln(w, "Required flow")
		colorResult.Fprintf(w, "  %.2f drops/min\n", fl.DropsPerMinute)
		colorResult.Fprintf(w, "  %.2f ml/h\n", fl.MlPerHour)
		colorMuted.Fprintf(w, "  %s ml · %s drops/ml · %s h %s min %s s\n",
			num(fl.VolumeMl), num(fl.DropsPerMl), num(fl.Desired.Hours), num(fl.Desired.Minutes), num(fl.Desired.Seconds))
		if fl.PatientName != "" {
			colorMuted.Fprintf(w, "  patient: %s\n", fl.PatientName)
		}
	}
}

func printValidation(w io.Writer, err error) {
	var verr *infusion.ValidationError
	if !errors.As(err, &verr) {
		colorError.Fprintln(w, err.Error())
		return
	}

	colorError.Fprintln(w, "Please enter valid numeric values greater than zero in all required fields.")
	fields := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, k := range fields {
		colorError.Fprintf(w, "  %s: %s\n", k, verr.Fields[k])
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
