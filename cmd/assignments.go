package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

var (
	assignmentListFlags  listFlags
	assignmentFormFlags  formFlags
	assignmentStatusFlag string
	assignmentDeleteYes  bool
)

// assignmentsCmd groups the assignment commands
var assignmentsCmd = &cobra.Command{
	Use:     "assignments",
	Aliases: []string{"assignment", "as"},
	Short:   "List and manage personnel assignments",
	Long: `List, create, update and delete assignments of assets to personnel.

Only personnel at your own base can be picked as assignees.

Examples:
  assetctl assignments list --search patrol
  assetctl assignments add --set purpose="Night patrol"
  assetctl assignments status patrol --to active
  assetctl assignments delete patrol`,
	RunE: runAssignmentList,
}

var assignmentListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List assignments",
	RunE:    runAssignmentList,
}

var assignmentAddCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"new"},
	Short:   "Assign an asset to a person",
	Args:    cobra.NoArgs,
	RunE:    runAssignmentAdd,
}

var assignmentStatusCmd = &cobra.Command{
	Use:   "status [query]",
	Short: "Change the status of an assignment",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAssignmentStatus,
}

var assignmentDeleteCmd = &cobra.Command{
	Use:     "delete [query]",
	Aliases: []string{"rm"},
	Short:   "Delete an assignment",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runAssignmentDelete,
}

func init() {
	assignmentListFlags.register(assignmentsCmd, domain.AssignmentStatuses)
	assignmentListFlags.register(assignmentListCmd, domain.AssignmentStatuses)
	assignmentFormFlags.register(assignmentAddCmd)
	assignmentStatusCmd.Flags().StringVar(&assignmentStatusFlag, "to", "", "New status ("+strings.Join(domain.AssignmentStatuses, ", ")+")")
	assignmentDeleteCmd.Flags().BoolVarP(&assignmentDeleteYes, "yes", "y", false, "Do not ask for confirmation")

	assignmentsCmd.AddCommand(assignmentListCmd, assignmentAddCmd, assignmentStatusCmd, assignmentDeleteCmd)
}

// assignmentTable is the table layout of the assignments view
var assignmentTable = entityTable[domain.Assignment]{
	title: ui.IconPerson + " Assignments",
	noun:  "assignments",
	columns: []ui.TableColumn{
		{Header: "Asset", Width: 18, MaxWidth: 28, Align: "left"},
		{Header: "Assigned To", Width: 16, MaxWidth: 24, Align: "left"},
		{Header: "Purpose", Width: 20, MaxWidth: 32, Align: "left"},
		{Header: "Condition", Width: 9, Align: "left"},
		{Header: "Status", Width: 10, Align: "left"},
		{Header: "Start", Width: 10, Align: "left"},
	},
	row: func(a domain.Assignment) []string {
		return []string{
			orDash(a.Asset.Name),
			orDash(a.AssignedTo.DisplayName()),
			orDash(a.Purpose),
			orDash(a.ConditionAtAssignment),
			ui.FormatStatus(a.Status),
			orDash(domain.DateOnly(a.StartDate)),
		}
	},
}

func loadAssignments() (*services.ListController[domain.Assignment], error) {
	return loadList(services.AssignmentList, services.AssignmentSource(backend))
}

func runAssignmentList(cmd *cobra.Command, args []string) error {
	ctrl, err := loadAssignments()
	if err != nil {
		fmt.Fprintln(stdout, ui.FormatError("Failed to load assignments"))
		return err
	}
	return runEntityList(ctrl, assignmentListFlags, assignmentTable)
}

// assignmentPreview renders the details of an assignment
func assignmentPreview(a domain.Assignment) string {
	var s strings.Builder
	fmt.Fprintf(&s, "Asset:       %s\n", orDash(a.Asset.Name))
	fmt.Fprintf(&s, "Assigned to: %s\n", orDash(a.AssignedTo.DisplayName()))
	fmt.Fprintf(&s, "Assigned by: %s\n", orDash(a.AssignedBy.DisplayName()))
	fmt.Fprintf(&s, "Purpose:     %s\n", orDash(a.Purpose))
	fmt.Fprintf(&s, "Condition:   %s\n", orDash(a.ConditionAtAssignment))
	fmt.Fprintf(&s, "Status:      %s\n", a.Status)
	fmt.Fprintf(&s, "Period:      %s - %s\n", orDash(domain.DateOnly(a.StartDate)), orDash(domain.DateOnly(a.EndDate)))
	return s.String()
}

func newAssignmentForm() *services.FormSession[domain.Assignment, services.AssignmentDraft] {
	return services.NewFormSession(services.NewAssignmentForm(backend, backend, backend), appShell, formOptions()...)
}

func runAssignmentAdd(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceAssignments, services.ActionCreate); err != nil {
		return err
	}

	form := newAssignmentForm()
	if err := form.Open(getContext(), nil); err != nil {
		return err
	}
	defer form.Close()

	fmt.Fprintln(stdout, ui.FormatTitle("New Assignment"))
	if err := fillForm(form, assignmentFormFlags); err != nil {
		return err
	}
	return submitForm(form, "Assignment created")
}

func runAssignmentStatus(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceAssignments, services.ActionUpdate); err != nil {
		return err
	}

	ctrl, err := loadAssignments()
	if err != nil {
		return err
	}
	assignment, err := selectEntity(ctrl.Items(), queryArg(args), services.AssignmentList, assignmentPreview)
	if err != nil {
		return err
	}

	form := newAssignmentForm()
	if err := form.Open(getContext(), &assignment); err != nil {
		return err
	}
	defer form.Close()

	if err := setStatus(form, assignmentStatusFlag, assignment.Status); err != nil {
		return err
	}
	return submitForm(form, "Assignment status updated")
}

func runAssignmentDelete(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceAssignments, services.ActionDelete); err != nil {
		return err
	}
	ctrl, err := loadAssignments()
	if err != nil {
		return err
	}
	return deleteEntity(ctrl, queryArg(args), assignmentPreview, assignmentDeleteYes)
}
