package domain

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-05T10:20:30.000Z", "2024-03-05"},
		{"2024-03-05T23:59:00Z", "2024-03-05"},
		{"2024-03-05", "2024-03-05"},
		{"2024-03-05Tgarbage", "2024-03-05"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DateOnly(tt.in); got != tt.want {
			t.Errorf("DateOnly(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAvailableAssets(t *testing.T) {
	assets := []Asset{
		{ID: "1", Status: AssetAvailable},
		{ID: "2", Status: AssetAssigned},
		{ID: "3", Status: AssetMaintenance},
		{ID: "4", Status: AssetAvailable},
	}

	got := AvailableAssets(assets)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "4" {
		t.Errorf("unexpected available assets: %+v", got)
	}
}

func TestSessionValid(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	var nilSession *Session
	if nilSession.Valid(now) {
		t.Error("nil session must not be valid")
	}
	if (&Session{}).Valid(now) {
		t.Error("session without token must not be valid")
	}
	if !(&Session{Token: "t"}).Valid(now) {
		t.Error("session without expiry should be valid")
	}
	if (&Session{Token: "t", ExpiresAt: now}).Valid(now) {
		t.Error("session expiring now must not be valid")
	}
	if !(&Session{Token: "t", ExpiresAt: now.Add(time.Minute)}).Valid(now) {
		t.Error("unexpired session should be valid")
	}
}

func TestTransferAssetSummary(t *testing.T) {
	tr := Transfer{Assets: []TransferLine{
		{Asset: AssetRef{Name: "Rifle A"}, Quantity: 2},
		{Asset: AssetRef{Name: "Truck"}, Quantity: 1},
	}}
	if got := tr.AssetSummary(); got != "Rifle A (x2), Truck (x1)" {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestUserInitial(t *testing.T) {
	if got := (User{FullName: "jane doe"}).Initial(); got != "J" {
		t.Errorf("expected J, got %s", got)
	}
	if got := (User{}).Initial(); got != "?" {
		t.Errorf("expected ?, got %s", got)
	}
}
