package ports

import (
	"context"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
)

// EntitySource is the slice of a gateway a list controller needs
type EntitySource[T any] interface {
	// List returns the full collection in server order
	List(ctx context.Context) ([]T, error)

	// Delete removes one entity by backend id
	Delete(ctx context.Context, id string) error
}

// AssetGateway defines the backend operations on assets
type AssetGateway interface {
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	CreateAsset(ctx context.Context, req domain.AssetRequest) error
	UpdateAsset(ctx context.Context, id string, req domain.AssetRequest) error
	DeleteAsset(ctx context.Context, id string) error
}

// MetricsGateway serves the dashboard snapshot
type MetricsGateway interface {
	Metrics(ctx context.Context) (*domain.Metrics, error)
}

// TransferGateway defines the backend operations on transfers
type TransferGateway interface {
	ListTransfers(ctx context.Context) ([]domain.Transfer, error)
	CreateTransfer(ctx context.Context, req domain.CreateTransferRequest) error
	UpdateTransferStatus(ctx context.Context, id, status string) error
	DeleteTransfer(ctx context.Context, id string) error
}

// AssignmentGateway defines the backend operations on assignments
type AssignmentGateway interface {
	ListAssignments(ctx context.Context) ([]domain.Assignment, error)
	CreateAssignment(ctx context.Context, req domain.CreateAssignmentRequest) error
	UpdateAssignmentStatus(ctx context.Context, id, status string) error
	DeleteAssignment(ctx context.Context, id string) error
}

// UserGateway lists the personnel known to the backend
type UserGateway interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// AuthGateway covers login, registration and the profile of the caller
type AuthGateway interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	Me(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, req domain.ProfileUpdate) (*domain.User, error)
}

// Gateway is everything the backend offers
type Gateway interface {
	AssetGateway
	MetricsGateway
	TransferGateway
	AssignmentGateway
	UserGateway
	AuthGateway
}

// SessionStore persists the session between runs
type SessionStore interface {
	// Load returns the stored session, or nil when nobody is logged in
	Load() (*domain.Session, error)

	// Save replaces the stored session
	Save(session *domain.Session) error

	// Clear removes the stored session
	Clear() error
}

// Confirmer presents a yes/no gate before a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Confirmed is a Confirmer for callers that already collected the answer
var Confirmed Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})
