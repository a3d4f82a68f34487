package domain

import (
	"strings"
	"time"
)

// AssetStatus is the lifecycle state of an asset
type AssetStatus string

const (
	AssetAvailable      AssetStatus = "AVAILABLE"
	AssetAssigned       AssetStatus = "ASSIGNED"
	AssetMaintenance    AssetStatus = "MAINTENANCE"
	AssetDecommissioned AssetStatus = "DECOMMISSIONED"
)

// AssetStatuses lists every asset status in display order
var AssetStatuses = []string{
	string(AssetAvailable),
	string(AssetAssigned),
	string(AssetMaintenance),
	string(AssetDecommissioned),
}

// Condition grades the physical state of an asset
type Condition string

const (
	ConditionNew  Condition = "NEW"
	ConditionGood Condition = "GOOD"
	ConditionFair Condition = "FAIR"
	ConditionPoor Condition = "POOR"
)

// Conditions lists every condition in display order
var Conditions = []string{
	string(ConditionNew),
	string(ConditionGood),
	string(ConditionFair),
	string(ConditionPoor),
}

// AssetTypes lists the asset categories the backend accepts
var AssetTypes = []string{"WEAPON", "VEHICLE", "AMMUNITION", "EQUIPMENT"}

// Asset is a tracked piece of equipment owned by a base
type Asset struct {
	ID             string         `json:"_id"`
	AssetID        string         `json:"assetId"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Category       string         `json:"category,omitempty"`
	SerialNumber   string         `json:"serialNumber,omitempty"`
	Status         AssetStatus    `json:"status"`
	Condition      Condition      `json:"condition"`
	PurchaseDate   string         `json:"purchaseDate,omitempty"`
	PurchasePrice  float64        `json:"purchasePrice,omitempty"`
	Supplier       string         `json:"supplier,omitempty"`
	Specifications map[string]any `json:"specifications,omitempty"`
	CurrentBase    string         `json:"currentBase"`
}

// IsAvailable reports whether the asset can be assigned or transferred
func (a Asset) IsAvailable() bool {
	return a.Status == AssetAvailable
}

// AvailableAssets returns the assets that may be picked for a new assignment or transfer
func AvailableAssets(assets []Asset) []Asset {
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if a.IsAvailable() {
			out = append(out, a)
		}
	}
	return out
}

// AssetRef is the embedded asset summary carried by transfers and assignments
type AssetRef struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serialNumber,omitempty"`
}

// DateOnly cuts an ISO timestamp down to its YYYY-MM-DD part.
// Values that are not timestamps are returned unchanged.
func DateOnly(value string) string {
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format(DateLayout)
	}
	if i := strings.IndexByte(value, 'T'); i > 0 {
		return value[:i]
	}
	return value
}

// DateLayout is the date-only layout used by every form
const DateLayout = "2006-01-02"

// AssetRequest is the payload of POST /assets and PATCH /assets/{id}
type AssetRequest struct {
	AssetID        string         `json:"assetId"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Category       string         `json:"category"`
	SerialNumber   string         `json:"serialNumber"`
	Status         string         `json:"status"`
	Condition      string         `json:"condition"`
	PurchaseDate   string         `json:"purchaseDate,omitempty"`
	PurchasePrice  *float64       `json:"purchasePrice,omitempty"`
	Supplier       string         `json:"supplier"`
	Specifications map[string]any `json:"specifications"`
	CurrentBase    string         `json:"currentBase"`
}
