package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/tipsplit/internal/calculator"
	"github.com/mmynk/tipsplit/internal/config"
	"github.com/mmynk/tipsplit/internal/form"
)

// ErrInvalidInput is returned by calc when any field fails validation, so
// the process exits non-zero after the errors are printed.
var ErrInvalidInput = errors.New("invalid input")

// CalcOptions holds the raw field text, exactly as a user would type it.
type CalcOptions struct {
	Bill   string
	Tip    string
	Preset string
	People string
}

func addCalc(topLevel *cobra.Command, v *viper.Viper) {
	o := &CalcOptions{}

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the tip and total each person pays.",
		Example: `
tipsplit calc --bill 142.55 --preset 15 --people 5
tipsplit calc --bill 100 --tip 18 --people 3
tipsplit calc --bill 0.25 --tip 0 --rules strict
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			calc, err := o.Fill(cfg.Rules)
			if err != nil {
				return err
			}
			printSplit(cmd.OutOrStdout(), calc)
			if !calc.Valid() {
				printErrors(cmd.ErrOrStderr(), calc.Errors())
				return ErrInvalidInput
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&o.Bill, "bill", form.DefaultBill, "Bill amount, for example 142.55 or $142,55.")
	cmd.Flags().StringVar(&o.Tip, "tip", form.DefaultTip, "Custom tip percentage.")
	cmd.Flags().StringVar(&o.Preset, "preset", "", "Preset tip percentage; overrides --tip.")
	cmd.Flags().StringVar(&o.People, "people", form.DefaultPeople, "Number of people sharing the bill.")

	topLevel.AddCommand(cmd)
}

// Fill replays the options into a fresh form, the same way a user filling
// in the fields would.
func (o *CalcOptions) Fill(rules calculator.Rules) (*form.Calculator, error) {
	calc := form.New(rules)
	calc.SetBill(o.Bill)
	calc.SetCustomTip(o.Tip)
	if o.Preset != "" {
		if err := calc.Apply(form.Event{Kind: form.EventSelectPreset, Value: o.Preset}); err != nil {
			return nil, err
		}
	}
	calc.SetPeople(o.People)
	return calc, nil
}

func printSplit(w io.Writer, calc *form.Calculator) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	view := calc.View()
	in := calc.Input()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Bill"), calculator.FormatCurrency(in.Bill))
	tip := calculator.FormatPercent(in.TipPercent)
	if _, ok := calc.ActivePreset(); ok {
		tip += " (preset)"
	}
	tbl.AddRow(bold.Sprint("Tip"), tip)
	tbl.AddRow(bold.Sprint("People"), fmt.Sprint(calculator.EffectivePeople(in.People)))
	tbl.AddRow(bold.Sprint("Tip Amount / person"), green.Sprint(view.TipPerPersonDisplay))
	tbl.AddRow(bold.Sprint("Total / person"), green.Sprint(view.TotalPerPersonDisplay))
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(w, tbl)
}

func printErrors(w io.Writer, errs calculator.FieldErrors) {
	red := color.New(color.FgRed)

	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "%s: %s\n", f, red.Sprint(errs[calculator.Field(f)]))
	}
}
