package services

import (
	"context"
	"strings"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/ports"
)

// AssignmentDraft is the editable form of an assignment
type AssignmentDraft struct {
	AssetID               string `form:"assetId" validate:"required"`
	AssignedToID          string `form:"assignedToId" validate:"required"`
	ConditionAtAssignment string `form:"conditionAtAssignment" validate:"required"`
	Purpose               string `form:"purpose" validate:"required"`
	Status                string `form:"status"`
}

// Request builds the POST /assignments payload
func (d AssignmentDraft) Request() domain.CreateAssignmentRequest {
	return domain.CreateAssignmentRequest{
		AssetID:               d.AssetID,
		AssignedToID:          d.AssignedToID,
		Purpose:               strings.TrimSpace(d.Purpose),
		ConditionAtAssignment: d.ConditionAtAssignment,
	}
}

// Assignees returns the users an acting user may assign to: everyone at
// the acting user's base, or everyone when the acting user has no base
func Assignees(users []domain.User, acting domain.User) []domain.User {
	if acting.Base == "" {
		return users
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.Base == acting.Base {
			out = append(out, u)
		}
	}
	return out
}

func assigneeChoices(users []domain.User) []Choice {
	out := make([]Choice, 0, len(users))
	for _, u := range users {
		label := u.FullName
		if u.Base != "" {
			label += " (" + u.Base + ")"
		}
		out = append(out, Choice{Value: u.ID, Label: label})
	}
	return out
}

func assignmentFields(*AssignmentDraft) []Field[AssignmentDraft] {
	return []Field[AssignmentDraft]{
		{Name: "assetId", Label: "Asset", Kind: FieldSelect, Source: sourceAssets, Required: true,
			Get: func(d *AssignmentDraft) string { return d.AssetID }, Set: func(d *AssignmentDraft, v string) { d.AssetID = v }},
		{Name: "assignedToId", Label: "Assigned To", Kind: FieldSelect, Source: sourceAssignees, Required: true,
			Get: func(d *AssignmentDraft) string { return d.AssignedToID }, Set: func(d *AssignmentDraft, v string) { d.AssignedToID = v }},
		{Name: "conditionAtAssignment", Label: "Condition at Assignment", Kind: FieldSelect, Source: sourceConditions, Required: true,
			Get: func(d *AssignmentDraft) string { return d.ConditionAtAssignment }, Set: func(d *AssignmentDraft, v string) { d.ConditionAtAssignment = v }},
		{Name: "purpose", Label: "Purpose", Required: true,
			Get: func(d *AssignmentDraft) string { return d.Purpose }, Set: func(d *AssignmentDraft, v string) { d.Purpose = v }},
		{Name: "status", Label: "Status", Kind: FieldSelect, Source: sourceAssignStat, Required: true, EditOnly: true,
			Get: func(d *AssignmentDraft) string { return d.Status }, Set: func(d *AssignmentDraft, v string) { d.Status = v }},
	}
}

// NewAssignmentForm describes the assignment dialog. Edits only change status.
func NewAssignmentForm(assignments ports.AssignmentGateway, assets ports.AssetGateway, users ports.UserGateway) FormDescriptor[domain.Assignment, AssignmentDraft] {
	return FormDescriptor[domain.Assignment, AssignmentDraft]{
		Resource:   ResourceAssignments,
		StatusOnly: true,
		Fields:     assignmentFields,
		Defaults: func(FormContext) AssignmentDraft {
			return AssignmentDraft{
				ConditionAtAssignment: string(domain.ConditionGood),
				Status:                domain.AssignmentPending,
			}
		},
		FromEntity: func(a domain.Assignment) AssignmentDraft {
			return AssignmentDraft{
				AssetID:               a.Asset.ID,
				AssignedToID:          a.AssignedTo.ID,
				ConditionAtAssignment: a.ConditionAtAssignment,
				Purpose:               a.Purpose,
				Status:                a.Status,
			}
		},
		LoadChoices: func(ctx context.Context, fc FormContext) (Choices, error) {
			assetList, err := assets.ListAssets(ctx)
			if err != nil {
				return nil, err
			}
			userList, err := users.ListUsers(ctx)
			if err != nil {
				return nil, err
			}
			return Choices{
				sourceAssets:     assetChoices(assetList),
				sourceAssignees:  assigneeChoices(Assignees(userList, fc.User)),
				sourceConditions: staticChoices(domain.Conditions),
				sourceAssignStat: staticChoices(domain.AssignmentStatuses),
			}, nil
		},
		Create: func(ctx context.Context, d AssignmentDraft) error {
			return assignments.CreateAssignment(ctx, d.Request())
		},
		Update: func(ctx context.Context, a domain.Assignment, d AssignmentDraft) error {
			return assignments.UpdateAssignmentStatus(ctx, a.ID, d.Status)
		},
	}
}
