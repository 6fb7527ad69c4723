package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/nicocardiel/repdoc/internal/domain"
)

// parseCredits accepts both decimal separators.
func parseCredits(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("enter a number of credits")
	}
	return v, nil
}

// validatePartialCredits accepts amounts strictly between 0 and available.
// Taking everything is the whole-subject choice.
func validatePartialCredits(available float64) func(string) error {
	return func(s string) error {
		v, err := parseCredits(s)
		if err != nil {
			return err
		}
		if v <= 0 || v >= available-domain.RoundTolerance {
			return fmt.Errorf("must be greater than 0 and less than %.4f", available)
		}
		return nil
	}
}

func validateRound(s string) error {
	r, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if err := domain.ValidateRound(r); err != nil {
		return fmt.Errorf("round must be between 0 and %d", domain.RoundNotEligible-1)
	}
	return nil
}

// roundInput returns a huh.Input for the current round; 0 opens the
// selection to everybody.
func roundInput(value *string) *huh.Input {
	return huh.NewInput().
		Title("Ronda actual").
		Description("0 = todos los profesores pueden elegir").
		Placeholder("1").
		Value(value).
		Validate(validateRound)
}

// creditsInput returns a huh.Input for a partial selection of a subject.
func creditsInput(available float64, value *string) *huh.Input {
	return huh.NewInput().
		Title("Créditos").
		Description(fmt.Sprintf("Entre 0 y %.4f", available)).
		Placeholder(fmt.Sprintf("%.1f", available/2)).
		Value(value).
		Validate(validatePartialCredits(available))
}

// confirmForm returns a themed single-field confirmation form.
func confirmForm(theme *huh.Theme, title, description string, value *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Sí").
				Negative("No").
				Value(value),
		),
	).WithTheme(theme).WithShowHelp(false)
}

// selectForm returns a themed single-select form.
func selectForm(theme *huh.Theme, title string, options []huh.Option[string], value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Height(min(len(options)+2, 20)).
				Value(value),
		),
	).WithTheme(theme).WithShowHelp(false)
}
