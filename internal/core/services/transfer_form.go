package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/ports"
)

// ErrLastLine is returned when removing the first line of a transfer
var ErrLastLine = errors.New("the first line cannot be removed")

// TransferLineDraft is one asset line of a transfer draft
type TransferLineDraft struct {
	Asset    string `form:"asset" validate:"required"`
	Quantity string `form:"quantity"`
}

// TransferDraft is the editable form of a transfer
type TransferDraft struct {
	Lines           []TransferLineDraft `form:"lines" validate:"required,min=1,dive"`
	ToBase          string              `form:"toBase" validate:"required"`
	Reason          string              `form:"reason" validate:"required"`
	Priority        string              `form:"priority" validate:"required"`
	ScheduledDate   string              `form:"scheduledDate" validate:"required"`
	TransportMethod string              `form:"transportDetails.method"`
	VehicleID       string              `form:"transportDetails.vehicleId"`
	Driver          string              `form:"transportDetails.driver"`
	Escort          string              `form:"transportDetails.escort"`
	Status          string              `form:"status"`
}

// AddLine appends an empty line with quantity 1
func (d *TransferDraft) AddLine() {
	d.Lines = append(d.Lines, TransferLineDraft{Quantity: "1"})
}

// RemoveLine drops line i. Line 0 always stays.
func (d *TransferDraft) RemoveLine(i int) error {
	if i == 0 {
		return ErrLastLine
	}
	if i < 0 || i >= len(d.Lines) {
		return fmt.Errorf("no line %d", i)
	}
	d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
	return nil
}

// quantity coerces a line quantity to a positive integer, defaulting to 1.
// Only the leading digits count, so "3 crates" is 3 and "2.5" is 2.
func quantity(raw string) int {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "+")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Clone copies the draft and its lines
func (d TransferDraft) Clone() TransferDraft {
	d.Lines = slices.Clone(d.Lines)
	return d
}

// Request reshapes the draft into the POST /transfers payload
func (d TransferDraft) Request() (domain.CreateTransferRequest, error) {
	req := domain.CreateTransferRequest{
		Assets:   make([]domain.TransferLineRequest, 0, len(d.Lines)),
		ToBase:   d.ToBase,
		Reason:   strings.TrimSpace(d.Reason),
		Priority: d.Priority,
		TransportDetails: domain.TransportDetails{
			Method:    d.TransportMethod,
			VehicleID: d.VehicleID,
			Driver:    d.Driver,
			Escort:    d.Escort,
		},
	}
	for _, line := range d.Lines {
		req.Assets = append(req.Assets, domain.TransferLineRequest{
			Asset:    line.Asset,
			Quantity: quantity(line.Quantity),
		})
	}
	scheduled, err := time.Parse(domain.DateLayout, d.ScheduledDate)
	if err != nil {
		return req, &FieldError{Field: "scheduledDate", Label: "Scheduled Date", Err: fmt.Errorf("expected YYYY-MM-DD")}
	}
	req.ScheduledDate = scheduled.UTC().Format(time.RFC3339)
	return req, nil
}

func lineField(i int, suffix string) string {
	return "lines." + strconv.Itoa(i) + "." + suffix
}

func transferFields(d *TransferDraft) []Field[TransferDraft] {
	fields := make([]Field[TransferDraft], 0, len(d.Lines)*2+10)
	for i := range d.Lines {
		i := i
		fields = append(fields,
			Field[TransferDraft]{Name: lineField(i, "asset"), Label: fmt.Sprintf("Asset #%d", i+1), Kind: FieldSelect, Source: sourceAssets, Required: true,
				Get: func(d *TransferDraft) string { return d.Lines[i].Asset }, Set: func(d *TransferDraft, v string) { d.Lines[i].Asset = v }},
			Field[TransferDraft]{Name: lineField(i, "quantity"), Label: fmt.Sprintf("Quantity #%d", i+1),
				Get: func(d *TransferDraft) string { return d.Lines[i].Quantity }, Set: func(d *TransferDraft, v string) { d.Lines[i].Quantity = v }},
		)
	}
	return append(fields,
		Field[TransferDraft]{Name: "toBase", Label: "Destination Base", Kind: FieldSelect, Source: sourceDestinations, Required: true,
			Get: func(d *TransferDraft) string { return d.ToBase }, Set: func(d *TransferDraft, v string) { d.ToBase = v }},
		Field[TransferDraft]{Name: "reason", Label: "Reason", Required: true,
			Get: func(d *TransferDraft) string { return d.Reason }, Set: func(d *TransferDraft, v string) { d.Reason = v }},
		Field[TransferDraft]{Name: "priority", Label: "Priority", Kind: FieldSelect, Source: sourcePriorities, Required: true,
			Get: func(d *TransferDraft) string { return d.Priority }, Set: func(d *TransferDraft, v string) { d.Priority = v }},
		Field[TransferDraft]{Name: "scheduledDate", Label: "Scheduled Date", Kind: FieldDate, Required: true,
			Get: func(d *TransferDraft) string { return d.ScheduledDate }, Set: func(d *TransferDraft, v string) { d.ScheduledDate = v }},
		Field[TransferDraft]{Name: "transportDetails.method", Label: "Transport Method", Kind: FieldSelect, Source: sourceTransport,
			Get: func(d *TransferDraft) string { return d.TransportMethod }, Set: func(d *TransferDraft, v string) { d.TransportMethod = v }},
		Field[TransferDraft]{Name: "transportDetails.vehicleId", Label: "Vehicle ID",
			Get: func(d *TransferDraft) string { return d.VehicleID }, Set: func(d *TransferDraft, v string) { d.VehicleID = v }},
		Field[TransferDraft]{Name: "transportDetails.driver", Label: "Driver",
			Get: func(d *TransferDraft) string { return d.Driver }, Set: func(d *TransferDraft, v string) { d.Driver = v }},
		Field[TransferDraft]{Name: "transportDetails.escort", Label: "Escort",
			Get: func(d *TransferDraft) string { return d.Escort }, Set: func(d *TransferDraft, v string) { d.Escort = v }},
		Field[TransferDraft]{Name: "status", Label: "Status", Kind: FieldSelect, Source: sourceTransferStat, Required: true, EditOnly: true,
			Get: func(d *TransferDraft) string { return d.Status }, Set: func(d *TransferDraft, v string) { d.Status = v }},
	)
}

// assetChoices lists only AVAILABLE assets
func assetChoices(assets []domain.Asset) []Choice {
	available := domain.AvailableAssets(assets)
	out := make([]Choice, 0, len(available))
	for _, a := range available {
		label := a.Name
		if a.SerialNumber != "" {
			label += " (" + a.SerialNumber + ")"
		}
		out = append(out, Choice{Value: a.ID, Label: label})
	}
	return out
}

// Destinations returns every base except the requester's own
func Destinations(bases []string, requesterBase string) []string {
	out := make([]string, 0, len(bases))
	for _, b := range bases {
		if b != requesterBase {
			out = append(out, b)
		}
	}
	return out
}

// NewTransferForm describes the transfer dialog. Edits only change status.
func NewTransferForm(transfers ports.TransferGateway, assets ports.AssetGateway) FormDescriptor[domain.Transfer, TransferDraft] {
	return FormDescriptor[domain.Transfer, TransferDraft]{
		Resource:   ResourceTransfers,
		StatusOnly: true,
		Fields:     transferFields,
		Clone:      TransferDraft.Clone,
		Defaults: func(fc FormContext) TransferDraft {
			return TransferDraft{
				Lines:         []TransferLineDraft{{Asset: "", Quantity: "1"}},
				Priority:      "MEDIUM",
				ScheduledDate: fc.Today.Format(domain.DateLayout),
				Status:        domain.TransferPending,
			}
		},
		FromEntity: func(t domain.Transfer) TransferDraft {
			d := TransferDraft{
				ToBase:          t.ToBase,
				Reason:          t.Reason,
				Priority:        t.Priority,
				ScheduledDate:   domain.DateOnly(t.ScheduledDate),
				TransportMethod: t.TransportDetails.Method,
				VehicleID:       t.TransportDetails.VehicleID,
				Driver:          t.TransportDetails.Driver,
				Escort:          t.TransportDetails.Escort,
				Status:          t.Status,
			}
			for _, line := range t.Assets {
				d.Lines = append(d.Lines, TransferLineDraft{Asset: line.Asset.ID, Quantity: strconv.Itoa(line.Quantity)})
			}
			if len(d.Lines) == 0 {
				d.Lines = []TransferLineDraft{{Quantity: "1"}}
			}
			return d
		},
		LoadChoices: func(ctx context.Context, fc FormContext) (Choices, error) {
			list, err := assets.ListAssets(ctx)
			if err != nil {
				return nil, err
			}
			return Choices{
				sourceAssets:       assetChoices(list),
				sourceDestinations: staticChoices(Destinations(fc.Bases, fc.User.Base)),
				sourcePriorities:   staticChoices(domain.Priorities),
				sourceTransport:    staticChoices(domain.TransportMethods),
				sourceTransferStat: staticChoices(domain.TransferStatuses),
			}, nil
		},
		Create: func(ctx context.Context, d TransferDraft) error {
			req, err := d.Request()
			if err != nil {
				return err
			}
			return transfers.CreateTransfer(ctx, req)
		},
		Update: func(ctx context.Context, t domain.Transfer, d TransferDraft) error {
			return transfers.UpdateTransferStatus(ctx, t.ID, d.Status)
		},
	}
}
