package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"golang.org/x/term"

	"github.com/kamal-hamza/assetctl/internal/core/ports"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

// errCancelled is returned when the user backs out of a picker
var errCancelled = errors.New("operation cancelled")

// Terminal streams; tests swap them
var (
	promptIn           = bufio.NewReader(os.Stdin)
	stdout   io.Writer = os.Stdout
)

// promptLine asks for a value; an empty answer keeps current
func promptLine(label, current string) (string, error) {
	if current != "" {
		fmt.Fprint(stdout, ui.StyleInfo.Render(fmt.Sprintf("%s [%s]: ", label, current)))
	} else {
		fmt.Fprint(stdout, ui.StyleInfo.Render(label+": "))
	}

	input, err := promptIn.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return current, nil
	}
	return input, nil
}

// promptSecret reads a password without echo when stdin is a terminal
func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if promptIn.Buffered() > 0 || !term.IsTerminal(fd) {
		return promptLine(label, "")
	}

	fmt.Fprint(stdout, ui.StyleInfo.Render(label+": "))
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(stdout)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// confirm asks a y/n question
func confirm(question string) bool {
	fmt.Fprint(stdout, ui.StyleWarning.Render(question+" (y/n): "))
	response, err := promptIn.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(response)) == "y"
}

// stdinConfirmer asks on the terminal unless yes is set
func stdinConfirmer(yes bool) ports.Confirmer {
	return ports.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		if yes {
			return true, nil
		}
		return confirm(prompt), nil
	})
}

// pickChoice lets the user pick one option of a select field
func pickChoice(label string, choices []services.Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no options available for %s", label)
	}
	idx, err := fuzzyfinder.Find(
		choices,
		func(i int) string {
			return choices[i].Label
		},
		fuzzyfinder.WithPromptString(label+" > "),
	)
	if err != nil {
		return "", errCancelled
	}
	return choices[idx].Value, nil
}

// pickChoices lets the user pick several options of a select field
func pickChoices(label string, choices []services.Choice) ([]string, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("no options available for %s", label)
	}
	idxs, err := fuzzyfinder.FindMulti(
		choices,
		func(i int) string {
			return choices[i].Label
		},
		fuzzyfinder.WithPromptString(label+" (tab to mark) > "),
	)
	if err != nil {
		return nil, errCancelled
	}
	out := make([]string, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, choices[i].Value)
	}
	return out, nil
}

// selectEntity resolves the entity a command acts on. Without a query the
// user picks with the fuzzy finder; with one, the entity whose id matches
// wins, then a single search match, then a numbered list.
func selectEntity[T any](items []T, query string, desc services.ListDescriptor[T], preview func(T) string) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, fmt.Errorf("no %s found", desc.Resource)
	}

	if query == "" {
		idx, err := fuzzyfinder.Find(
			items,
			func(i int) string {
				return desc.Label(items[i])
			},
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i == -1 || preview == nil {
					return ""
				}
				return preview(items[i])
			}),
		)
		if err != nil {
			return zero, errCancelled
		}
		return items[idx], nil
	}

	var matches []T
	lower := strings.ToLower(query)
	for _, item := range items {
		if desc.ID(item) == query {
			return item, nil
		}
		for _, field := range desc.SearchFields(item) {
			if strings.Contains(strings.ToLower(field), lower) {
				matches = append(matches, item)
				break
			}
		}
	}

	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("no %s matching %q", desc.Resource, query)
	case 1:
		return matches[0], nil
	}

	fmt.Fprintln(stdout, ui.FormatInfo(fmt.Sprintf("Found %d matches:", len(matches))))
	fmt.Fprintln(stdout)
	for i, item := range matches {
		fmt.Fprintf(stdout, "  %d. %s %s\n",
			i+1,
			ui.FormatBold(desc.Label(item)),
			ui.StyleMuted.Render("("+desc.ID(item)+")"))
	}
	fmt.Fprintln(stdout)

	for {
		input, err := promptLine(fmt.Sprintf("Select (1-%d)", len(matches)), "")
		if err != nil {
			return zero, errCancelled
		}
		selection, err := strconv.Atoi(input)
		if err != nil || selection < 1 || selection > len(matches) {
			fmt.Fprintln(stdout, ui.FormatWarning(fmt.Sprintf("Please enter a number between 1 and %d.", len(matches))))
			continue
		}
		return matches[selection-1], nil
	}
}
