package domain

import (
	"strconv"
	"strings"
	"time"
)

// TransferStatus values are lowercase on the wire
const (
	TransferPending   = "pending"
	TransferApproved  = "approved"
	TransferRejected  = "rejected"
	TransferCompleted = "completed"
	TransferCancelled = "cancelled"
)

// TransferStatuses lists every transfer status in display order
var TransferStatuses = []string{
	TransferPending,
	TransferApproved,
	TransferRejected,
	TransferCompleted,
	TransferCancelled,
}

// Priorities lists transfer priorities from lowest to highest
var Priorities = []string{"LOW", "MEDIUM", "HIGH", "URGENT"}

// TransportMethods lists the accepted transport methods
var TransportMethods = []string{"GROUND", "AIR", "SEA"}

// TransferLine is one (asset, quantity) pair of a transfer
type TransferLine struct {
	Asset    AssetRef `json:"asset"`
	Quantity int      `json:"quantity"`
}

// TransportDetails describes how a transfer moves
type TransportDetails struct {
	Method    string `json:"method"`
	VehicleID string `json:"vehicleId"`
	Driver    string `json:"driver"`
	Escort    string `json:"escort"`
}

// PersonRef is the embedded user summary returned by the backend
type PersonRef struct {
	ID       string `json:"_id,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Name     string `json:"name,omitempty"`
}

// DisplayName prefers the full name and falls back to the short name
func (p PersonRef) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Name
}

// Transfer is a request to move assets to another base
type Transfer struct {
	ID               string           `json:"_id"`
	Assets           []TransferLine   `json:"assets"`
	FromBase         string           `json:"fromBase"`
	ToBase           string           `json:"toBase"`
	Reason           string           `json:"reason"`
	Priority         string           `json:"priority"`
	Status           string           `json:"status"`
	ScheduledDate    string           `json:"scheduledDate"`
	TransportDetails TransportDetails `json:"transportDetails"`
	RequestedBy      PersonRef        `json:"requestedBy"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// AssetSummary renders the lines as "Rifle A (x2), Truck (x1)"
func (t Transfer) AssetSummary() string {
	parts := make([]string, 0, len(t.Assets))
	for _, line := range t.Assets {
		parts = append(parts, line.Asset.Name+" (x"+strconv.Itoa(line.Quantity)+")")
	}
	return strings.Join(parts, ", ")
}

// TransferLineRequest is the outbound shape of a transfer line
type TransferLineRequest struct {
	Asset    string `json:"asset"`
	Quantity int    `json:"quantity"`
}

// CreateTransferRequest is the payload of POST /transfers
type CreateTransferRequest struct {
	Assets           []TransferLineRequest `json:"assets"`
	ToBase           string                `json:"toBase"`
	Reason           string                `json:"reason"`
	Priority         string                `json:"priority"`
	ScheduledDate    string                `json:"scheduledDate"`
	TransportDetails TransportDetails      `json:"transportDetails"`
}

// StatusUpdate is the payload of the narrow status PATCH calls
type StatusUpdate struct {
	Status string `json:"status"`
}
