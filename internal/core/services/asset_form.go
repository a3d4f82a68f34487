package services

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/ports"
)

// AssetDraft is the editable form of an asset
type AssetDraft struct {
	AssetID        string `form:"assetId" validate:"required"`
	Name           string `form:"name" validate:"required"`
	Type           string `form:"type" validate:"required"`
	Category       string `form:"category"`
	SerialNumber   string `form:"serialNumber"`
	Status         string `form:"status" validate:"required"`
	Condition      string `form:"condition" validate:"required"`
	PurchaseDate   string `form:"purchaseDate"`
	PurchasePrice  string `form:"purchasePrice"`
	Supplier       string `form:"supplier"`
	CurrentBase    string `form:"currentBase" validate:"required"`
	Specifications map[string]any
}

// Clone copies the draft and its specifications
func (d AssetDraft) Clone() AssetDraft {
	d.Specifications = maps.Clone(d.Specifications)
	return d
}

// Request builds the create/update payload
func (d AssetDraft) Request() (domain.AssetRequest, error) {
	req := domain.AssetRequest{
		AssetID:        strings.TrimSpace(d.AssetID),
		Name:           strings.TrimSpace(d.Name),
		Type:           d.Type,
		Category:       d.Category,
		SerialNumber:   d.SerialNumber,
		Status:         d.Status,
		Condition:      d.Condition,
		PurchaseDate:   d.PurchaseDate,
		Supplier:       d.Supplier,
		Specifications: d.Specifications,
		CurrentBase:    d.CurrentBase,
	}
	if req.Specifications == nil {
		req.Specifications = map[string]any{}
	}
	if price := strings.TrimSpace(d.PurchasePrice); price != "" {
		v, err := strconv.ParseFloat(price, 64)
		if err != nil {
			return req, &FieldError{Field: "purchasePrice", Label: "Purchase Price", Err: fmt.Errorf("not a number")}
		}
		req.PurchasePrice = &v
	}
	return req, nil
}

func staticChoices(values []string) []Choice {
	out := make([]Choice, 0, len(values))
	for _, v := range values {
		out = append(out, Choice{Value: v, Label: v})
	}
	return out
}

// Choice sources shared by the descriptors
const (
	sourceBases        = "bases"
	sourceDestinations = "destinations"
	sourceAssetTypes   = "assetTypes"
	sourceAssetStatus  = "assetStatuses"
	sourceConditions   = "conditions"
	sourceAssets       = "availableAssets"
	sourceAssignees    = "assignees"
	sourcePriorities   = "priorities"
	sourceTransport    = "transportMethods"
	sourceTransferStat = "transferStatuses"
	sourceAssignStat   = "assignmentStatuses"
)

func nonAdminLocked(s FormState) bool {
	return !s.User.IsAdmin()
}

func assetFields(*AssetDraft) []Field[AssetDraft] {
	return []Field[AssetDraft]{
		{Name: "assetId", Label: "Asset ID", Required: true,
			Get: func(d *AssetDraft) string { return d.AssetID }, Set: func(d *AssetDraft, v string) { d.AssetID = v }},
		{Name: "name", Label: "Name", Required: true,
			Get: func(d *AssetDraft) string { return d.Name }, Set: func(d *AssetDraft, v string) { d.Name = v }},
		{Name: "type", Label: "Type", Kind: FieldSelect, Source: sourceAssetTypes, Required: true,
			Get: func(d *AssetDraft) string { return d.Type }, Set: func(d *AssetDraft, v string) { d.Type = v }},
		{Name: "category", Label: "Category",
			Get: func(d *AssetDraft) string { return d.Category }, Set: func(d *AssetDraft, v string) { d.Category = v }},
		{Name: "serialNumber", Label: "Serial Number",
			Get: func(d *AssetDraft) string { return d.SerialNumber }, Set: func(d *AssetDraft, v string) { d.SerialNumber = v }},
		{Name: "status", Label: "Status", Kind: FieldSelect, Source: sourceAssetStatus, Required: true,
			Get: func(d *AssetDraft) string { return d.Status }, Set: func(d *AssetDraft, v string) { d.Status = v }},
		{Name: "condition", Label: "Condition", Kind: FieldSelect, Source: sourceConditions, Required: true,
			Get: func(d *AssetDraft) string { return d.Condition }, Set: func(d *AssetDraft, v string) { d.Condition = v }},
		{Name: "purchaseDate", Label: "Purchase Date", Kind: FieldDate,
			Get: func(d *AssetDraft) string { return d.PurchaseDate }, Set: func(d *AssetDraft, v string) { d.PurchaseDate = v }},
		{Name: "purchasePrice", Label: "Purchase Price",
			Get: func(d *AssetDraft) string { return d.PurchasePrice }, Set: func(d *AssetDraft, v string) { d.PurchasePrice = v }},
		{Name: "supplier", Label: "Supplier",
			Get: func(d *AssetDraft) string { return d.Supplier }, Set: func(d *AssetDraft, v string) { d.Supplier = v }},
		{Name: "currentBase", Label: "Base", Kind: FieldSelect, Source: sourceBases, Required: true, Locked: nonAdminLocked,
			Get: func(d *AssetDraft) string { return d.CurrentBase }, Set: func(d *AssetDraft, v string) { d.CurrentBase = v }},
	}
}

// NewAssetForm describes the asset add/edit dialog. Edits send the full
// payload.
func NewAssetForm(g ports.AssetGateway) FormDescriptor[domain.Asset, AssetDraft] {
	return FormDescriptor[domain.Asset, AssetDraft]{
		Resource: ResourceAssets,
		Fields:   assetFields,
		Clone:    AssetDraft.Clone,
		Defaults: func(fc FormContext) AssetDraft {
			d := AssetDraft{
				Status:         string(domain.AssetAvailable),
				Condition:      string(domain.ConditionNew),
				PurchaseDate:   fc.Today.Format(domain.DateLayout),
				Specifications: map[string]any{},
			}
			if !fc.User.IsAdmin() {
				d.CurrentBase = fc.User.Base
			}
			return d
		},
		FromEntity: func(a domain.Asset) AssetDraft {
			d := AssetDraft{
				AssetID:        a.AssetID,
				Name:           a.Name,
				Type:           a.Type,
				Category:       a.Category,
				SerialNumber:   a.SerialNumber,
				Status:         string(a.Status),
				Condition:      string(a.Condition),
				PurchaseDate:   domain.DateOnly(a.PurchaseDate),
				Supplier:       a.Supplier,
				CurrentBase:    a.CurrentBase,
				Specifications: maps.Clone(a.Specifications),
			}
			if a.PurchasePrice != 0 {
				d.PurchasePrice = strconv.FormatFloat(a.PurchasePrice, 'f', -1, 64)
			}
			return d
		},
		LoadChoices: func(ctx context.Context, fc FormContext) (Choices, error) {
			return Choices{
				sourceAssetTypes:  staticChoices(domain.AssetTypes),
				sourceAssetStatus: staticChoices(domain.AssetStatuses),
				sourceConditions:  staticChoices(domain.Conditions),
				sourceBases:       staticChoices(fc.Bases),
			}, nil
		},
		Create: func(ctx context.Context, d AssetDraft) error {
			req, err := d.Request()
			if err != nil {
				return err
			}
			return g.CreateAsset(ctx, req)
		},
		Update: func(ctx context.Context, a domain.Asset, d AssetDraft) error {
			req, err := d.Request()
			if err != nil {
				return err
			}
			return g.UpdateAsset(ctx, a.ID, req)
		},
	}
}
