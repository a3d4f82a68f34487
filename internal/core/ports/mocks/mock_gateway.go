package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
)

// MockGateway is an in-memory implementation of ports.Gateway for testing
type MockGateway struct {
	mu          sync.RWMutex
	assets      []domain.Asset
	transfers   []domain.Transfer
	assignments []domain.Assignment
	users       []domain.User
	metrics     *domain.Metrics
	me          *domain.User
	token       string

	// Err, when set, is returned by every call
	Err error

	// Recorded payloads of the most recent calls
	LastAssetCreate      *domain.AssetRequest
	LastAssetUpdate      *domain.AssetRequest
	LastAssetUpdateID    string
	LastTransferCreate   *domain.CreateTransferRequest
	LastAssignmentCreate *domain.CreateAssignmentRequest
	LastStatusUpdate     StatusCall
	LastProfileUpdate    *domain.ProfileUpdate
	Calls                map[string]int
}

// StatusCall records a status-only PATCH
type StatusCall struct {
	Resource string
	ID       string
	Status   string
}

// NewMockGateway creates an empty mock backend
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Calls: make(map[string]int),
		token: "mock-token",
	}
}

func (m *MockGateway) record(name string) error {
	m.Calls[name]++
	return m.Err
}

// CallCount returns how often the named method was called
func (m *MockGateway) CallCount(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Calls[name]
}

// SetAssets replaces the asset collection
func (m *MockGateway) SetAssets(assets ...domain.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = append([]domain.Asset(nil), assets...)
}

// SetTransfers replaces the transfer collection
func (m *MockGateway) SetTransfers(transfers ...domain.Transfer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append([]domain.Transfer(nil), transfers...)
}

// SetAssignments replaces the assignment collection
func (m *MockGateway) SetAssignments(assignments ...domain.Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append([]domain.Assignment(nil), assignments...)
}

// SetUsers replaces the user collection
func (m *MockGateway) SetUsers(users ...domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append([]domain.User(nil), users...)
}

// SetMetrics sets the snapshot returned by Metrics
func (m *MockGateway) SetMetrics(metrics *domain.Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
}

// SetMe sets the user returned by Me and by Login
func (m *MockGateway) SetMe(user *domain.User, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.me = user
	m.token = token
}

// ListAssets returns all assets
func (m *MockGateway) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListAssets"); err != nil {
		return nil, err
	}
	return append([]domain.Asset(nil), m.assets...), nil
}

// CreateAsset appends a new asset built from the request
func (m *MockGateway) CreateAsset(ctx context.Context, req domain.AssetRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateAsset"); err != nil {
		return err
	}
	m.LastAssetCreate = &req
	m.assets = append(m.assets, domain.Asset{
		ID:          fmt.Sprintf("asset-%d", len(m.assets)+1),
		AssetID:     req.AssetID,
		Name:        req.Name,
		Type:        req.Type,
		Status:      domain.AssetStatus(req.Status),
		Condition:   domain.Condition(req.Condition),
		CurrentBase: req.CurrentBase,
	})
	return nil
}

// UpdateAsset records the full update
func (m *MockGateway) UpdateAsset(ctx context.Context, id string, req domain.AssetRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateAsset"); err != nil {
		return err
	}
	for i := range m.assets {
		if m.assets[i].ID == id {
			m.LastAssetUpdate = &req
			m.LastAssetUpdateID = id
			m.assets[i].Name = req.Name
			m.assets[i].Status = domain.AssetStatus(req.Status)
			return nil
		}
	}
	return fmt.Errorf("asset not found: %s", id)
}

// DeleteAsset removes an asset by id
func (m *MockGateway) DeleteAsset(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteAsset"); err != nil {
		return err
	}
	for i := range m.assets {
		if m.assets[i].ID == id {
			m.assets = append(m.assets[:i], m.assets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("asset not found: %s", id)
}

// Metrics returns the configured snapshot
func (m *MockGateway) Metrics(ctx context.Context) (*domain.Metrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Metrics"); err != nil {
		return nil, err
	}
	if m.metrics == nil {
		return &domain.Metrics{}, nil
	}
	copied := *m.metrics
	return &copied, nil
}

// ListTransfers returns all transfers
func (m *MockGateway) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListTransfers"); err != nil {
		return nil, err
	}
	return append([]domain.Transfer(nil), m.transfers...), nil
}

// CreateTransfer records the payload and stores a pending transfer
func (m *MockGateway) CreateTransfer(ctx context.Context, req domain.CreateTransferRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateTransfer"); err != nil {
		return err
	}
	m.LastTransferCreate = &req
	m.transfers = append(m.transfers, domain.Transfer{
		ID:       fmt.Sprintf("transfer-%d", len(m.transfers)+1),
		ToBase:   req.ToBase,
		Reason:   req.Reason,
		Priority: req.Priority,
		Status:   domain.TransferPending,
	})
	return nil
}

// UpdateTransferStatus records a status-only update
func (m *MockGateway) UpdateTransferStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateTransferStatus"); err != nil {
		return err
	}
	m.LastStatusUpdate = StatusCall{Resource: "transfers", ID: id, Status: status}
	for i := range m.transfers {
		if m.transfers[i].ID == id {
			m.transfers[i].Status = status
		}
	}
	return nil
}

// DeleteTransfer removes a transfer by id
func (m *MockGateway) DeleteTransfer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteTransfer"); err != nil {
		return err
	}
	for i := range m.transfers {
		if m.transfers[i].ID == id {
			m.transfers = append(m.transfers[:i], m.transfers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transfer not found: %s", id)
}

// ListAssignments returns all assignments
func (m *MockGateway) ListAssignments(ctx context.Context) ([]domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListAssignments"); err != nil {
		return nil, err
	}
	return append([]domain.Assignment(nil), m.assignments...), nil
}

// CreateAssignment records the payload and stores a pending assignment
func (m *MockGateway) CreateAssignment(ctx context.Context, req domain.CreateAssignmentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateAssignment"); err != nil {
		return err
	}
	m.LastAssignmentCreate = &req
	m.assignments = append(m.assignments, domain.Assignment{
		ID:                    fmt.Sprintf("assignment-%d", len(m.assignments)+1),
		Asset:                 domain.AssetRef{ID: req.AssetID},
		AssignedTo:            domain.PersonRef{ID: req.AssignedToID},
		Purpose:               req.Purpose,
		ConditionAtAssignment: req.ConditionAtAssignment,
		Status:                domain.AssignmentPending,
	})
	return nil
}

// UpdateAssignmentStatus records a status-only update
func (m *MockGateway) UpdateAssignmentStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateAssignmentStatus"); err != nil {
		return err
	}
	m.LastStatusUpdate = StatusCall{Resource: "assignments", ID: id, Status: status}
	for i := range m.assignments {
		if m.assignments[i].ID == id {
			m.assignments[i].Status = status
		}
	}
	return nil
}

// DeleteAssignment removes an assignment by id
func (m *MockGateway) DeleteAssignment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteAssignment"); err != nil {
		return err
	}
	for i := range m.assignments {
		if m.assignments[i].ID == id {
			m.assignments = append(m.assignments[:i], m.assignments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("assignment not found: %s", id)
}

// ListUsers returns all users
func (m *MockGateway) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListUsers"); err != nil {
		return nil, err
	}
	return append([]domain.User(nil), m.users...), nil
}

// Login returns the configured user and token
func (m *MockGateway) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Login"); err != nil {
		return nil, err
	}
	if m.me == nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return &domain.AuthResult{Token: m.token, User: *m.me}, nil
}

// Register returns a new user with the configured token
func (m *MockGateway) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Register"); err != nil {
		return nil, err
	}
	user := domain.User{
		ID:       fmt.Sprintf("user-%d", len(m.users)+1),
		FullName: reg.FullName,
		Email:    reg.Email,
		Phone:    reg.Phone,
		Base:     reg.Base,
	}
	m.users = append(m.users, user)
	m.me = &user
	return &domain.AuthResult{Token: m.token, User: user}, nil
}

// Me returns the configured user
func (m *MockGateway) Me(ctx context.Context) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Me"); err != nil {
		return nil, err
	}
	if m.me == nil {
		return nil, fmt.Errorf("not authenticated")
	}
	copied := *m.me
	return &copied, nil
}

// UpdateProfile applies the update to the configured user
func (m *MockGateway) UpdateProfile(ctx context.Context, req domain.ProfileUpdate) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateProfile"); err != nil {
		return nil, err
	}
	if m.me == nil {
		return nil, fmt.Errorf("not authenticated")
	}
	m.LastProfileUpdate = &req
	m.me.FullName = req.FullName
	m.me.Email = req.Email
	m.me.Phone = req.Phone
	m.me.Base = req.Base
	copied := *m.me
	return &copied, nil
}
