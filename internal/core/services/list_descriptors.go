package services

import (
	"context"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/ports"
)

// AssetList describes the assets view
var AssetList = ListDescriptor[domain.Asset]{
	Resource: ResourceAssets,
	ID:       func(a domain.Asset) string { return a.ID },
	Label:    func(a domain.Asset) string { return a.Name },
	SearchFields: func(a domain.Asset) []string {
		return []string{a.Name, a.AssetID}
	},
	Status:   func(a domain.Asset) string { return string(a.Status) },
	Statuses: domain.AssetStatuses,
}

// TransferList describes the transfers view
var TransferList = ListDescriptor[domain.Transfer]{
	Resource: ResourceTransfers,
	ID:       func(t domain.Transfer) string { return t.ID },
	Label: func(t domain.Transfer) string {
		return "transfer to " + t.ToBase
	},
	SearchFields: func(t domain.Transfer) []string {
		fields := []string{t.Reason}
		for _, line := range t.Assets {
			fields = append(fields, line.Asset.Name)
		}
		return fields
	},
	Status:   func(t domain.Transfer) string { return t.Status },
	Statuses: domain.TransferStatuses,
}

// AssignmentList describes the assignments view
var AssignmentList = ListDescriptor[domain.Assignment]{
	Resource: ResourceAssignments,
	ID:       func(a domain.Assignment) string { return a.ID },
	Label: func(a domain.Assignment) string {
		return "assignment of " + a.Asset.Name
	},
	SearchFields: func(a domain.Assignment) []string {
		return []string{a.Purpose, a.Asset.Name}
	},
	Status:   func(a domain.Assignment) string { return a.Status },
	Statuses: domain.AssignmentStatuses,
}

// source adapts a pair of gateway methods to ports.EntitySource
type source[T any] struct {
	list func(context.Context) ([]T, error)
	del  func(context.Context, string) error
}

func (s source[T]) List(ctx context.Context) ([]T, error) { return s.list(ctx) }

func (s source[T]) Delete(ctx context.Context, id string) error { return s.del(ctx, id) }

// AssetSource exposes the asset endpoints as an entity source
func AssetSource(g ports.AssetGateway) ports.EntitySource[domain.Asset] {
	return source[domain.Asset]{list: g.ListAssets, del: g.DeleteAsset}
}

// TransferSource exposes the transfer endpoints as an entity source
func TransferSource(g ports.TransferGateway) ports.EntitySource[domain.Transfer] {
	return source[domain.Transfer]{list: g.ListTransfers, del: g.DeleteTransfer}
}

// AssignmentSource exposes the assignment endpoints as an entity source
func AssignmentSource(g ports.AssignmentGateway) ports.EntitySource[domain.Assignment] {
	return source[domain.Assignment]{list: g.ListAssignments, del: g.DeleteAssignment}
}
