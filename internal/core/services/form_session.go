package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
)

// FieldKind selects how a field is edited
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldSelect
	FieldDate
)

func (k FieldKind) String() string {
	switch k {
	case FieldSelect:
		return "select"
	case FieldDate:
		return "date"
	default:
		return "text"
	}
}

// Choice is one option of a select field
type Choice struct {
	Value string
	Label string
}

// Choices holds the picker options of a form keyed by source name
type Choices map[string][]Choice

// Contains reports whether value is one of the options under key
func (c Choices) Contains(key, value string) bool {
	for _, choice := range c[key] {
		if choice.Value == value {
			return true
		}
	}
	return false
}

// FormState is what field rules can look at
type FormState struct {
	Edit bool
	User domain.User
	Can  func(Resource, Action) bool
}

// Field describes one editable value of a draft
type Field[D any] struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool

	// Source names the Choices entry of a select field
	Source string

	// EditOnly fields are hidden while creating
	EditOnly bool

	Get func(*D) string
	Set func(*D, string)

	// Locked, when set, decides whether the field can be edited
	Locked func(FormState) bool
}

// FormContext is handed to the descriptor callbacks
type FormContext struct {
	User    domain.User
	Choices Choices
	Bases   []string
	Today   time.Time
}

// FormDescriptor specialises a FormSession for one entity type
type FormDescriptor[E any, D any] struct {
	Resource Resource

	// StatusOnly entities only send their status on edit
	StatusOnly bool

	Fields      func(d *D) []Field[D]
	Defaults    func(fc FormContext) D
	FromEntity  func(e E) D
	LoadChoices func(ctx context.Context, fc FormContext) (Choices, error)
	Create      func(ctx context.Context, d D) error
	Update      func(ctx context.Context, e E, d D) error

	// Clone copies the slices and maps of a draft; Draft hands out clones
	Clone func(d D) D
}

// FieldView is a rendered field
type FieldView struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Value    string
	Choices  []Choice
	Locked   bool
}

// SessionProvider is the part of the shell a form session needs
type SessionProvider interface {
	User() *domain.User
	Can(resource Resource, action Action) bool
}

// FormSession drives one add/edit dialog: open, edit the draft, submit
type FormSession[E any, D any] struct {
	mu       sync.Mutex
	desc     FormDescriptor[E, D]
	session  SessionProvider
	bases    []string
	clock    clockwork.Clock
	onSaved  func(ctx context.Context) error
	validate *validator.Validate
	logger   *logrus.Entry

	open     bool
	existing *E
	draft    D
	fc       FormContext
	err      error
}

// FormOption customises a FormSession
type FormOption func(*formOptions)

type formOptions struct {
	bases   []string
	clock   clockwork.Clock
	onSaved func(ctx context.Context) error
	logger  *logrus.Logger
}

// WithBases sets the base list offered by base pickers
func WithBases(bases []string) FormOption {
	return func(o *formOptions) { o.bases = bases }
}

// WithClock sets the clock used for date defaults
func WithClock(clock clockwork.Clock) FormOption {
	return func(o *formOptions) { o.clock = clock }
}

// OnSaved registers the callback run after a successful submit, usually
// the owning list controller's Refresh
func OnSaved(fn func(ctx context.Context) error) FormOption {
	return func(o *formOptions) { o.onSaved = fn }
}

// WithFormLogger sets the logger
func WithFormLogger(logger *logrus.Logger) FormOption {
	return func(o *formOptions) { o.logger = logger }
}

// NewFormSession creates a closed form session
func NewFormSession[E any, D any](desc FormDescriptor[E, D], session SessionProvider, opts ...FormOption) *FormSession[E, D] {
	o := formOptions{bases: domain.DefaultBases, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}
	var entry *logrus.Entry
	if o.logger != nil {
		entry = o.logger.WithField("component", "form")
	} else {
		entry = logrus.WithField("component", "form")
	}

	return &FormSession[E, D]{
		desc:     desc,
		session:  session,
		bases:    o.bases,
		clock:    o.clock,
		onSaved:  o.onSaved,
		validate: newDraftValidator(),
		logger:   entry.WithField("resource", desc.Resource),
	}
}

// Open seeds the draft from existing, or from the defaults when existing is
// nil. Picker choices are loaded once here and kept until the form closes.
func (f *FormSession[E, D]) Open(ctx context.Context, existing *E) error {
	user := f.session.User()
	if user == nil {
		return ErrNotAuthenticated
	}
	action := ActionCreate
	if existing != nil {
		action = ActionUpdate
	}
	if !f.session.Can(f.desc.Resource, action) {
		return fmt.Errorf("%w: cannot %s %s", ErrForbidden, action, f.desc.Resource)
	}

	fc := FormContext{
		User:  *user,
		Bases: f.bases,
		Today: f.clock.Now(),
	}
	if f.desc.LoadChoices != nil {
		choices, err := f.desc.LoadChoices(ctx, fc)
		if err != nil {
			return fmt.Errorf("failed to load form choices: %w", err)
		}
		fc.Choices = choices
	}
	if fc.Choices == nil {
		fc.Choices = Choices{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.fc = fc
	f.err = nil
	if existing != nil {
		e := *existing
		f.existing = &e
		f.draft = f.desc.FromEntity(e)
	} else {
		f.existing = nil
		f.draft = f.desc.Defaults(fc)
	}
	f.open = true
	return nil
}

// IsOpen reports whether the dialog is showing
func (f *FormSession[E, D]) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// IsEdit reports whether the session edits an existing entity
func (f *FormSession[E, D]) IsEdit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing != nil
}

// Draft returns a copy of the current draft
func (f *FormSession[E, D]) Draft() D {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.desc.Clone != nil {
		return f.desc.Clone(f.draft)
	}
	return f.draft
}

// Err returns the failure of the last submit, if it failed
func (f *FormSession[E, D]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Close discards the draft
func (f *FormSession[E, D]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.existing = nil
	f.err = nil
	var zero D
	f.draft = zero
}

func (f *FormSession[E, D]) state() FormState {
	return FormState{Edit: f.existing != nil, User: f.fc.User, Can: f.session.Can}
}

func (f *FormSession[E, D]) visibleFields() []Field[D] {
	all := f.desc.Fields(&f.draft)
	edit := f.existing != nil
	out := make([]Field[D], 0, len(all))
	for _, field := range all {
		if field.EditOnly && !edit {
			continue
		}
		out = append(out, field)
	}
	return out
}

func (f *FormSession[E, D]) locked(field Field[D]) bool {
	if f.existing != nil && f.desc.StatusOnly && field.Name != "status" {
		return true
	}
	return field.Locked != nil && field.Locked(f.state())
}

// Fields renders the visible fields with their current values
func (f *FormSession[E, D]) Fields() []FieldView {
	f.mu.Lock()
	defer f.mu.Unlock()

	fields := f.visibleFields()
	out := make([]FieldView, 0, len(fields))
	for _, field := range fields {
		out = append(out, FieldView{
			Name:     field.Name,
			Label:    field.Label,
			Kind:     field.Kind,
			Required: field.Required,
			Value:    field.Get(&f.draft),
			Choices:  f.fc.Choices[field.Source],
			Locked:   f.locked(field),
		})
	}
	return out
}

// SetField edits the draft. Select fields only accept the snapshotted
// choices, date fields only YYYY-MM-DD, and locked fields nothing.
func (f *FormSession[E, D]) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return ErrFormClosed
	}

	for _, field := range f.visibleFields() {
		if field.Name != name {
			continue
		}
		if f.locked(field) {
			return &FieldError{Field: name, Label: field.Label, Err: ErrLockedField}
		}
		switch field.Kind {
		case FieldSelect:
			if !(value == "" && !field.Required) && !f.fc.Choices.Contains(field.Source, value) {
				return &FieldError{Field: name, Label: field.Label, Err: ErrInvalidChoice}
			}
		case FieldDate:
			if value != "" {
				if _, err := time.Parse(domain.DateLayout, value); err != nil {
					return &FieldError{Field: name, Label: field.Label, Err: fmt.Errorf("expected YYYY-MM-DD")}
				}
			}
		}
		field.Set(&f.draft, value)
		return nil
	}
	return &FieldError{Field: name, Err: ErrUnknownField}
}

// Edit applies a structural change to the draft, such as adding a line
func (f *FormSession[E, D]) Edit(fn func(d *D) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrFormClosed
	}
	return fn(&f.draft)
}

// Submit checks required fields and sends the draft. On success the form
// closes and the owner is notified; on failure the draft is kept and the
// error is returned and exposed through Err.
func (f *FormSession[E, D]) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrFormClosed
	}
	draft := f.draft
	existing := f.existing
	fields := f.visibleFields()
	f.mu.Unlock()

	if err := f.checkRequired(draft, existing != nil, fields); err != nil {
		f.fail(err)
		return err
	}

	var err error
	if existing != nil {
		err = f.desc.Update(ctx, *existing, draft)
	} else {
		err = f.desc.Create(ctx, draft)
	}
	if err != nil {
		f.logger.WithError(err).WithField("edit", existing != nil).Warn("submit failed")
		f.fail(err)
		return err
	}

	f.logger.WithField("edit", existing != nil).Info("saved")
	f.Close()

	if f.onSaved != nil {
		if err := f.onSaved(ctx); err != nil {
			f.logger.WithError(err).Warn("refresh after save failed")
		}
	}
	return nil
}

func (f *FormSession[E, D]) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FormSession[E, D]) checkRequired(draft D, edit bool, fields []Field[D]) error {
	labels := make(map[string]string, len(fields))
	for _, field := range fields {
		labels[field.Name] = field.Label
	}

	if edit && f.desc.StatusOnly {
		for _, field := range fields {
			if field.Name == "status" {
				if err := f.validate.Var(field.Get(&draft), "required"); err != nil {
					return &FieldError{Field: "status", Label: field.Label, Err: ErrRequired}
				}
			}
		}
		return nil
	}

	err := f.validate.Struct(draft)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, verr := range verrs {
		name := fieldPath(verr.Namespace())
		// edit-only fields are not part of a create
		if _, visible := labels[name]; !visible && !strings.HasPrefix(name, "lines") {
			continue
		}
		return &FieldError{Field: name, Label: labels[name], Err: ErrRequired}
	}
	return nil
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// fieldPath turns "TransferDraft.lines[0].asset" into "lines.0.asset"
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

func newDraftValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}
