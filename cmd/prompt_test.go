package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
)

// withTerminal feeds input to the prompts and captures what they print
func withTerminal(t *testing.T, input string) *bytes.Buffer {
	t.Helper()
	oldIn, oldOut := promptIn, stdout
	out := &bytes.Buffer{}
	promptIn = bufio.NewReader(strings.NewReader(input))
	stdout = out
	t.Cleanup(func() {
		promptIn, stdout = oldIn, oldOut
	})
	return out
}

// fakeForm records SetField calls; reject maps a field to values it refuses
type fakeForm struct {
	fields []services.FieldView
	set    map[string]string
	reject map[string]string
}

func newFakeForm(fields ...services.FieldView) *fakeForm {
	return &fakeForm{fields: fields, set: map[string]string{}, reject: map[string]string{}}
}

func (f *fakeForm) Fields() []services.FieldView { return f.fields }

func (f *fakeForm) SetField(name, value string) error {
	if bad, ok := f.reject[name]; ok && bad == value {
		return fmt.Errorf("%s: invalid value %q", name, value)
	}
	f.set[name] = value
	return nil
}

func (f *fakeForm) Submit(ctx context.Context) error { return nil }

func TestParseFieldValues(t *testing.T) {
	values, err := parseFieldValues([]string{"name=Rifle A", " type = WEAPON ", "notes="})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("Expected 3 values, got %d", len(values))
	}
	if values[0].name != "name" || values[0].value != "Rifle A" {
		t.Errorf("Unexpected first value: %+v", values[0])
	}
	if values[1].name != "type" || values[1].value != "WEAPON" {
		t.Errorf("Expected trimmed pair, got %+v", values[1])
	}
	if values[2].value != "" {
		t.Errorf("Expected empty value, got %q", values[2].value)
	}

	for _, bad := range []string{"name", "=value", ""} {
		if _, err := parseFieldValues([]string{bad}); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestFillFormNoInput(t *testing.T) {
	withTerminal(t, "")
	form := newFakeForm(
		services.FieldView{Name: "name", Label: "Name"},
		services.FieldView{Name: "notes", Label: "Notes"},
	)

	err := fillForm(form, formFlags{sets: []string{"name=Truck"}, noInput: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if form.set["name"] != "Truck" {
		t.Errorf("Expected name to be set, got %q", form.set["name"])
	}
	if _, ok := form.set["notes"]; ok {
		t.Error("Expected notes to stay untouched with --no-input")
	}
}

func TestFillFormPromptsRemainingFields(t *testing.T) {
	out := withTerminal(t, "night shift\n\n")
	form := newFakeForm(
		services.FieldView{Name: "name", Label: "Name"},
		services.FieldView{Name: "purpose", Label: "Purpose", Required: true},
		services.FieldView{Name: "base", Label: "Base", Locked: true, Value: "Alpha"},
		services.FieldView{Name: "notes", Label: "Notes", Value: "keep"},
	)

	err := fillForm(form, formFlags{sets: []string{"name=Truck"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if form.set["purpose"] != "night shift" {
		t.Errorf("Expected purpose from prompt, got %q", form.set["purpose"])
	}
	if _, ok := form.set["base"]; ok {
		t.Error("Locked field must not be prompted")
	}
	if _, ok := form.set["notes"]; ok {
		t.Error("Empty answer must keep the current value")
	}
	if !strings.Contains(out.String(), "Purpose *") {
		t.Errorf("Expected required marker in prompt, got %q", out.String())
	}
	if strings.Contains(out.String(), "Name") {
		t.Error("Field given with --set must not be prompted")
	}
}

func TestFillFormSkip(t *testing.T) {
	withTerminal(t, "")
	form := newFakeForm(services.FieldView{Name: "lines.0.asset", Label: "Asset"})

	skip := func(name string) bool { return strings.HasPrefix(name, "lines.") }
	if err := fillForm(form, formFlags{}, skip); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(form.set) != 0 {
		t.Errorf("Expected skipped field to stay unset, got %v", form.set)
	}
}

func TestPromptFieldRetriesRejectedValue(t *testing.T) {
	out := withTerminal(t, "31-02-2025\n2025-02-28\n")
	form := newFakeForm()
	form.reject["startDate"] = "31-02-2025"

	field := services.FieldView{Name: "startDate", Label: "Start Date", Kind: services.FieldDate}
	if err := promptField(form, field); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if form.set["startDate"] != "2025-02-28" {
		t.Errorf("Expected second answer to be kept, got %q", form.set["startDate"])
	}
	if !strings.Contains(out.String(), "invalid value") {
		t.Error("Expected the rejection to be shown")
	}
}

func TestConfirm(t *testing.T) {
	withTerminal(t, "y\n")
	if !confirm("Delete?") {
		t.Error("Expected 'y' to confirm")
	}

	withTerminal(t, "n\n")
	if confirm("Delete?") {
		t.Error("Expected 'n' to decline")
	}

	withTerminal(t, "")
	if confirm("Delete?") {
		t.Error("Expected EOF to decline")
	}
}

func TestStdinConfirmerYesSkipsPrompt(t *testing.T) {
	out := withTerminal(t, "")
	ok, err := stdinConfirmer(true).Confirm(context.Background(), "Delete?")
	if err != nil || !ok {
		t.Fatalf("Expected confirmation, got %v, %v", ok, err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no prompt, got %q", out.String())
	}
}

func TestSelectEntity(t *testing.T) {
	assets := []domain.Asset{
		{ID: "a1", AssetID: "AST-1", Name: "Rifle Alpha"},
		{ID: "a2", AssetID: "AST-2", Name: "Rifle Bravo"},
		{ID: "a3", AssetID: "AST-3", Name: "Truck"},
	}

	t.Run("by id", func(t *testing.T) {
		withTerminal(t, "")
		got, err := selectEntity(assets, "a2", services.AssetList, nil)
		if err != nil || got.ID != "a2" {
			t.Errorf("Expected a2, got %+v, %v", got, err)
		}
	})

	t.Run("single match", func(t *testing.T) {
		withTerminal(t, "")
		got, err := selectEntity(assets, "truck", services.AssetList, nil)
		if err != nil || got.ID != "a3" {
			t.Errorf("Expected a3, got %+v, %v", got, err)
		}
	})

	t.Run("numbered choice", func(t *testing.T) {
		out := withTerminal(t, "7\n2\n")
		got, err := selectEntity(assets, "rifle", services.AssetList, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got.ID != "a2" {
			t.Errorf("Expected a2, got %s", got.ID)
		}
		if !strings.Contains(out.String(), "Found 2 matches") {
			t.Errorf("Expected match list, got %q", out.String())
		}
		if !strings.Contains(out.String(), "between 1 and 2") {
			t.Error("Expected out-of-range answer to be rejected")
		}
	})

	t.Run("no match", func(t *testing.T) {
		withTerminal(t, "")
		if _, err := selectEntity(assets, "tank", services.AssetList, nil); err == nil {
			t.Error("Expected error for unmatched query")
		}
	})

	t.Run("empty", func(t *testing.T) {
		withTerminal(t, "")
		if _, err := selectEntity(nil, "", services.AssetList, nil); err == nil {
			t.Error("Expected error for empty collection")
		}
	})
}

func TestMatchStatus(t *testing.T) {
	if got := matchStatus(domain.AssetStatuses, "available"); got != "AVAILABLE" {
		t.Errorf("Expected AVAILABLE, got %q", got)
	}
	if got := matchStatus(domain.AssetStatuses, "lost"); got != "" {
		t.Errorf("Expected no match, got %q", got)
	}
}
