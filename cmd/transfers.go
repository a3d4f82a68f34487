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
	transferListFlags  listFlags
	transferFormFlags  formFlags
	transferAssetFlags []string
	transferStatusFlag string
	transferDeleteYes  bool
)

// transfersCmd groups the transfer commands
var transfersCmd = &cobra.Command{
	Use:     "transfers",
	Aliases: []string{"transfer", "t"},
	Short:   "List and manage transfers between bases",
	Long: `List, request, update and delete transfers of assets between bases.

A transfer carries one or more asset lines. On the command line each line
is given as --asset <asset-id>[:quantity]; without --asset you pick the
assets interactively.

Examples:
  assetctl transfers list --status pending
  assetctl transfers add --asset 64f0c2 --asset 64f0c3:2 --set toBase="Bravo Base" --set reason=Rotation
  assetctl transfers status "Rotation" --to approved
  assetctl transfers delete`,
	RunE: runTransferList,
}

var transferListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List transfers",
	RunE:    runTransferList,
}

var transferAddCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"new", "request"},
	Short:   "Request a transfer",
	Args:    cobra.NoArgs,
	RunE:    runTransferAdd,
}

var transferStatusCmd = &cobra.Command{
	Use:   "status [query]",
	Short: "Change the status of a transfer",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTransferStatus,
}

var transferDeleteCmd = &cobra.Command{
	Use:     "delete [query]",
	Aliases: []string{"rm"},
	Short:   "Delete a transfer",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runTransferDelete,
}

func init() {
	transferListFlags.register(transfersCmd, domain.TransferStatuses)
	transferListFlags.register(transferListCmd, domain.TransferStatuses)
	transferFormFlags.register(transferAddCmd)
	transferAddCmd.Flags().StringArrayVar(&transferAssetFlags, "asset", nil, "Asset line as <asset-id>[:quantity] (repeatable)")
	transferStatusCmd.Flags().StringVar(&transferStatusFlag, "to", "", "New status ("+strings.Join(domain.TransferStatuses, ", ")+")")
	transferDeleteCmd.Flags().BoolVarP(&transferDeleteYes, "yes", "y", false, "Do not ask for confirmation")

	transfersCmd.AddCommand(transferListCmd, transferAddCmd, transferStatusCmd, transferDeleteCmd)
}

// transferTable is the table layout of the transfers view
var transferTable = entityTable[domain.Transfer]{
	title: ui.IconMove + " Transfers",
	noun:  "transfers",
	columns: []ui.TableColumn{
		{Header: "Assets", Width: 24, MaxWidth: 36, Align: "left"},
		{Header: "From", Width: 12, MaxWidth: 16, Align: "left"},
		{Header: "To", Width: 12, MaxWidth: 16, Align: "left"},
		{Header: "Priority", Width: 8, Align: "left"},
		{Header: "Status", Width: 10, Align: "left"},
		{Header: "Scheduled", Width: 10, Align: "left"},
		{Header: "Requested By", Width: 14, MaxWidth: 20, Align: "left"},
	},
	row: func(t domain.Transfer) []string {
		return []string{
			orDash(t.AssetSummary()),
			orDash(t.FromBase),
			orDash(t.ToBase),
			ui.PriorityStyle(t.Priority).Render(t.Priority),
			ui.FormatStatus(t.Status),
			orDash(domain.DateOnly(t.ScheduledDate)),
			orDash(t.RequestedBy.DisplayName()),
		}
	},
}

func loadTransfers() (*services.ListController[domain.Transfer], error) {
	return loadList(services.TransferList, services.TransferSource(backend))
}

func runTransferList(cmd *cobra.Command, args []string) error {
	ctrl, err := loadTransfers()
	if err != nil {
		fmt.Fprintln(stdout, ui.FormatError("Failed to load transfers"))
		return err
	}
	return runEntityList(ctrl, transferListFlags, transferTable)
}

// transferPreview renders the details of a transfer
func transferPreview(t domain.Transfer) string {
	var s strings.Builder
	fmt.Fprintf(&s, "Assets:    %s\n", orDash(t.AssetSummary()))
	fmt.Fprintf(&s, "Route:     %s -> %s\n", orDash(t.FromBase), orDash(t.ToBase))
	fmt.Fprintf(&s, "Reason:    %s\n", orDash(t.Reason))
	fmt.Fprintf(&s, "Priority:  %s\n", t.Priority)
	fmt.Fprintf(&s, "Status:    %s\n", t.Status)
	fmt.Fprintf(&s, "Scheduled: %s\n", orDash(domain.DateOnly(t.ScheduledDate)))
	if t.TransportDetails.Method != "" {
		fmt.Fprintf(&s, "Transport: %s %s\n", t.TransportDetails.Method, t.TransportDetails.VehicleID)
	}
	return s.String()
}

func newTransferForm() *services.FormSession[domain.Transfer, services.TransferDraft] {
	return services.NewFormSession(services.NewTransferForm(backend, backend), appShell, formOptions()...)
}

// parseAssetLine splits "<asset-id>[:quantity]"
func parseAssetLine(raw string) (asset, quantity string) {
	asset, quantity, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || strings.TrimSpace(quantity) == "" {
		quantity = "1"
	}
	return strings.TrimSpace(asset), strings.TrimSpace(quantity)
}

// fillTransferLines sets the asset lines from --asset, or asks for them
func fillTransferLines(form *services.FormSession[domain.Transfer, services.TransferDraft], lines []string, interactive bool) error {
	picked := false
	if len(lines) == 0 && interactive {
		var choices []services.Choice
		for _, f := range form.Fields() {
			if f.Name == "lines.0.asset" {
				choices = f.Choices
			}
		}
		ids, err := pickChoices("Assets", choices)
		if err != nil {
			return err
		}
		lines = ids
		picked = true
	}

	for i, raw := range lines {
		asset, qty := parseAssetLine(raw)
		if i > 0 {
			if err := form.Edit(func(d *services.TransferDraft) error {
				d.AddLine()
				return nil
			}); err != nil {
				return err
			}
		}
		if err := form.SetField(fmt.Sprintf("lines.%d.asset", i), asset); err != nil {
			return err
		}
		if picked {
			var err error
			qty, err = promptLine(fmt.Sprintf("Quantity #%d", i+1), qty)
			if err != nil {
				return err
			}
		}
		if err := form.SetField(fmt.Sprintf("lines.%d.quantity", i), qty); err != nil {
			return err
		}
	}
	return nil
}

// isLineField reports whether name addresses a transfer line
func isLineField(name string) bool {
	return strings.HasPrefix(name, "lines.")
}

func runTransferAdd(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceTransfers, services.ActionCreate); err != nil {
		return err
	}

	form := newTransferForm()
	if err := form.Open(getContext(), nil); err != nil {
		return err
	}
	defer form.Close()

	fmt.Fprintln(stdout, ui.FormatTitle("New Transfer"))
	if err := fillTransferLines(form, transferAssetFlags, !transferFormFlags.noInput); err != nil {
		return err
	}

	if err := fillForm(form, transferFormFlags, isLineField); err != nil {
		return err
	}
	return submitForm(form, "Transfer requested")
}

func runTransferStatus(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceTransfers, services.ActionUpdate); err != nil {
		return err
	}

	ctrl, err := loadTransfers()
	if err != nil {
		return err
	}
	transfer, err := selectEntity(ctrl.Items(), queryArg(args), services.TransferList, transferPreview)
	if err != nil {
		return err
	}

	form := newTransferForm()
	if err := form.Open(getContext(), &transfer); err != nil {
		return err
	}
	defer form.Close()

	if err := setStatus(form, transferStatusFlag, transfer.Status); err != nil {
		return err
	}
	return submitForm(form, "Transfer status updated")
}

// setStatus applies --to, or asks for the new status
func setStatus(form formDriver, to, current string) error {
	if to != "" {
		return form.SetField("status", strings.ToLower(to))
	}
	for _, f := range form.Fields() {
		if f.Name == "status" {
			value, err := pickChoice("Status (currently "+current+")", f.Choices)
			if err != nil {
				return err
			}
			return form.SetField("status", value)
		}
	}
	return fmt.Errorf("no status field")
}

func runTransferDelete(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceTransfers, services.ActionDelete); err != nil {
		return err
	}
	ctrl, err := loadTransfers()
	if err != nil {
		return err
	}
	return deleteEntity(ctrl, queryArg(args), transferPreview, transferDeleteYes)
}
