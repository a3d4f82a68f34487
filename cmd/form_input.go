package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

// formDriver is the part of a form session the CLI drives
type formDriver interface {
	Fields() []services.FieldView
	SetField(name, value string) error
	Submit(ctx context.Context) error
}

// fieldValue is one --set name=value pair
type fieldValue struct {
	name  string
	value string
}

// formFlags are shared by every add/edit command
type formFlags struct {
	sets    []string
	noInput bool
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "Set a field, e.g. --set name=\"Rifle A\" (repeatable)")
	cmd.Flags().BoolVar(&f.noInput, "no-input", false, "Do not prompt for fields")
}

// parseFieldValues splits name=value pairs, keeping their order
func parseFieldValues(raw []string) ([]fieldValue, error) {
	out := make([]fieldValue, 0, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", pair)
		}
		out = append(out, fieldValue{name: name, value: strings.TrimSpace(value)})
	}
	return out, nil
}

// fillForm applies the --set values, then prompts for every editable field
// that was not set on the command line and is not skipped
func fillForm(form formDriver, flags formFlags, skip ...func(name string) bool) error {
	values, err := parseFieldValues(flags.sets)
	if err != nil {
		return err
	}

	given := make(map[string]bool, len(values))
	for _, v := range values {
		if err := form.SetField(v.name, v.value); err != nil {
			return err
		}
		given[v.name] = true
	}

	if flags.noInput {
		return nil
	}

	for _, field := range form.Fields() {
		if field.Locked || given[field.Name] || skipped(field.Name, skip) {
			continue
		}
		if err := promptField(form, field); err != nil {
			return err
		}
	}
	return nil
}

func skipped(name string, skip []func(string) bool) bool {
	for _, fn := range skip {
		if fn(name) {
			return true
		}
	}
	return false
}

// promptField asks for one field until the form accepts the answer
func promptField(form formDriver, field services.FieldView) error {
	label := field.Label
	if field.Required {
		label += " *"
	}

	for {
		var value string
		var err error
		switch field.Kind {
		case services.FieldSelect:
			value, err = pickChoice(label, field.Choices)
			if errors.Is(err, errCancelled) {
				// Backing out keeps the current value
				value, err = field.Value, nil
			}
		case services.FieldDate:
			value, err = promptLine(label+" (YYYY-MM-DD)", field.Value)
		default:
			value, err = promptLine(label, field.Value)
		}
		if err != nil {
			return err
		}

		if value == field.Value {
			return nil
		}
		if err := form.SetField(field.Name, value); err != nil {
			fmt.Fprintln(stdout, ui.FormatWarning(err.Error()))
			if field.Kind == services.FieldSelect {
				return err
			}
			continue
		}
		return nil
	}
}

// submitForm sends the form and reports the outcome
func submitForm(form formDriver, success string) error {
	if err := form.Submit(getContext()); err != nil {
		var fieldErr *services.FieldError
		if errors.As(err, &fieldErr) {
			fmt.Fprintln(stdout, ui.FormatError(fieldErr.Error()))
		}
		return err
	}
	fmt.Fprintln(stdout, ui.FormatSuccess(success))
	return nil
}

// printForm shows the fields of a form and their current values
func printForm(form formDriver) {
	for _, field := range form.Fields() {
		value := field.Value
		if value == "" {
			value = "-"
		}
		for _, c := range field.Choices {
			if c.Value == field.Value && c.Label != c.Value {
				value = c.Label
				break
			}
		}
		if field.Locked {
			value += " " + ui.IconLock
		}
		fmt.Fprintln(stdout, ui.RenderKeyValue(field.Label, value))
	}
}
