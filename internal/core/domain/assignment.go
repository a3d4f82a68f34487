package domain

// Assignment statuses
const (
	AssignmentPending   = "pending"
	AssignmentActive    = "active"
	AssignmentCompleted = "completed"
	AssignmentCancelled = "cancelled"
)

// AssignmentStatuses lists every assignment status in display order
var AssignmentStatuses = []string{
	AssignmentPending,
	AssignmentActive,
	AssignmentCompleted,
	AssignmentCancelled,
}

// Assignment binds one asset to one person
type Assignment struct {
	ID                    string    `json:"_id"`
	Asset                 AssetRef  `json:"asset"`
	AssignedTo            PersonRef `json:"assignedTo"`
	AssignedBy            PersonRef `json:"assignedBy"`
	Status                string    `json:"status"`
	ConditionAtAssignment string    `json:"conditionAtAssignment"`
	Purpose               string    `json:"purpose"`
	StartDate             string    `json:"startDate"`
	EndDate               string    `json:"endDate"`
}

// CreateAssignmentRequest is the payload of POST /assignments
type CreateAssignmentRequest struct {
	AssetID               string `json:"assetId"`
	AssignedToID          string `json:"assignedToId"`
	Purpose               string `json:"purpose"`
	ConditionAtAssignment string `json:"conditionAtAssignment"`
}
