package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/ports"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

var (
	assetListFlags listFlags
	assetFormFlags formFlags
	assetShowCopy  bool
	assetDeleteYes bool
)

// assetsCmd groups the asset commands
var assetsCmd = &cobra.Command{
	Use:     "assets",
	Aliases: []string{"asset", "a"},
	Short:   "List and manage assets",
	Long: `List, inspect, create, edit and delete assets.

Examples:
  assetctl assets list --search rifle --status available
  assetctl assets show "Rifle A" --copy
  assetctl assets add --set assetId=R-001 --set name="Rifle A" --set type=WEAPON
  assetctl assets edit R-001
  assetctl assets delete R-001`,
	RunE: runAssetList,
}

var assetListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List assets",
	RunE:    runAssetList,
}

var assetShowCmd = &cobra.Command{
	Use:   "show [query]",
	Short: "Show one asset",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAssetShow,
}

var assetAddCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"new"},
	Short:   "Create an asset",
	Args:    cobra.NoArgs,
	RunE:    runAssetAdd,
}

var assetEditCmd = &cobra.Command{
	Use:   "edit [query]",
	Short: "Edit an asset",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAssetEdit,
}

var assetDeleteCmd = &cobra.Command{
	Use:     "delete [query]",
	Aliases: []string{"rm"},
	Short:   "Delete an asset",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runAssetDelete,
}

func init() {
	assetListFlags.register(assetsCmd, domain.AssetStatuses)
	assetListFlags.register(assetListCmd, domain.AssetStatuses)
	assetShowCmd.Flags().BoolVarP(&assetShowCopy, "copy", "c", false, "Copy the asset id to the clipboard")
	assetFormFlags.register(assetAddCmd)
	assetFormFlags.register(assetEditCmd)
	assetDeleteCmd.Flags().BoolVarP(&assetDeleteYes, "yes", "y", false, "Do not ask for confirmation")

	assetsCmd.AddCommand(assetListCmd, assetShowCmd, assetAddCmd, assetEditCmd, assetDeleteCmd)
}

// assetTable is the table layout of the assets view
var assetTable = entityTable[domain.Asset]{
	title: ui.IconAsset + " Assets",
	noun:  "assets",
	columns: []ui.TableColumn{
		{Header: "Asset ID", Width: 12, MaxWidth: 16, Align: "left"},
		{Header: "Name", Width: 20, MaxWidth: 32, Align: "left"},
		{Header: "Type", Width: 10, Align: "left"},
		{Header: "Status", Width: 14, Align: "left"},
		{Header: "Condition", Width: 9, Align: "left"},
		{Header: "Base", Width: 12, MaxWidth: 20, Align: "left"},
	},
	row: func(a domain.Asset) []string {
		return []string{
			a.AssetID,
			a.Name,
			a.Type,
			ui.FormatStatus(string(a.Status)),
			string(a.Condition),
			orDash(a.CurrentBase),
		}
	},
}

func loadAssets() (*services.ListController[domain.Asset], error) {
	return loadList(services.AssetList, services.AssetSource(backend))
}

func runAssetList(cmd *cobra.Command, args []string) error {
	ctrl, err := loadAssets()
	if err != nil {
		fmt.Fprintln(stdout, ui.FormatError("Failed to load assets"))
		return err
	}
	return runEntityList(ctrl, assetListFlags, assetTable)
}

// assetPreview renders the details of an asset
func assetPreview(a domain.Asset) string {
	var s strings.Builder
	fmt.Fprintf(&s, "Asset ID:  %s\n", a.AssetID)
	fmt.Fprintf(&s, "Name:      %s\n", a.Name)
	fmt.Fprintf(&s, "Type:      %s\n", a.Type)
	fmt.Fprintf(&s, "Category:  %s\n", orDash(a.Category))
	fmt.Fprintf(&s, "Serial:    %s\n", orDash(a.SerialNumber))
	fmt.Fprintf(&s, "Status:    %s\n", a.Status)
	fmt.Fprintf(&s, "Condition: %s\n", a.Condition)
	fmt.Fprintf(&s, "Base:      %s\n", orDash(a.CurrentBase))
	fmt.Fprintf(&s, "Purchased: %s\n", orDash(domain.DateOnly(a.PurchaseDate)))
	if a.PurchasePrice != 0 {
		fmt.Fprintf(&s, "Price:     %s\n", strconv.FormatFloat(a.PurchasePrice, 'f', 2, 64))
	}
	fmt.Fprintf(&s, "Supplier:  %s\n", orDash(a.Supplier))
	return s.String()
}

func queryArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runAssetShow(cmd *cobra.Command, args []string) error {
	ctrl, err := loadAssets()
	if err != nil {
		return err
	}
	asset, err := selectEntity(ctrl.Items(), queryArg(args), services.AssetList, assetPreview)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, ui.FormatTitle(asset.Name))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, ui.RenderKeyValue("ID", asset.ID))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Asset ID", asset.AssetID))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Type", asset.Type))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Category", orDash(asset.Category)))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Serial Number", orDash(asset.SerialNumber)))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Status", ui.FormatStatus(string(asset.Status))))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Condition", string(asset.Condition)))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Base", orDash(asset.CurrentBase)))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Purchase Date", orDash(domain.DateOnly(asset.PurchaseDate))))
	if asset.PurchasePrice != 0 {
		fmt.Fprintln(stdout, ui.RenderKeyValue("Purchase Price", strconv.FormatFloat(asset.PurchasePrice, 'f', 2, 64)))
	}
	fmt.Fprintln(stdout, ui.RenderKeyValue("Supplier", orDash(asset.Supplier)))

	if len(asset.Specifications) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, ui.StyleHeader.Render("Specifications"))
		keys := make([]string, 0, len(asset.Specifications))
		for k := range asset.Specifications {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		specs := make([]string, 0, len(keys))
		for _, k := range keys {
			specs = append(specs, fmt.Sprintf("%s: %v", k, asset.Specifications[k]))
		}
		fmt.Fprint(stdout, ui.RenderSimpleList(specs))
	}

	if assetShowCopy {
		if err := clipboard.WriteAll(asset.ID); err != nil {
			fmt.Fprintln(stdout, ui.FormatWarning("Could not copy to clipboard: "+err.Error()))
		} else {
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, ui.FormatSuccess("Copied asset id to clipboard"))
		}
	}
	return nil
}

func newAssetForm() *services.FormSession[domain.Asset, services.AssetDraft] {
	return services.NewFormSession(services.NewAssetForm(backend), appShell, formOptions()...)
}

func runAssetAdd(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceAssets, services.ActionCreate); err != nil {
		return err
	}

	form := newAssetForm()
	if err := form.Open(getContext(), nil); err != nil {
		return err
	}
	defer form.Close()

	fmt.Fprintln(stdout, ui.FormatTitle("New Asset"))
	if err := fillForm(form, assetFormFlags); err != nil {
		return err
	}
	return submitForm(form, "Asset created")
}

func runAssetEdit(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceAssets, services.ActionUpdate); err != nil {
		return err
	}

	ctrl, err := loadAssets()
	if err != nil {
		return err
	}
	asset, err := selectEntity(ctrl.Items(), queryArg(args), services.AssetList, assetPreview)
	if err != nil {
		return err
	}

	form := newAssetForm()
	if err := form.Open(getContext(), &asset); err != nil {
		return err
	}
	defer form.Close()

	fmt.Fprintln(stdout, ui.FormatTitle("Edit "+asset.Name))
	if err := fillForm(form, assetFormFlags); err != nil {
		return err
	}
	return submitForm(form, "Asset updated")
}

func runAssetDelete(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceAssets, services.ActionDelete); err != nil {
		return err
	}
	ctrl, err := loadAssets()
	if err != nil {
		return err
	}
	return deleteEntity(ctrl, queryArg(args), assetPreview, assetDeleteYes)
}

// deleteEntity resolves an entity and deletes it through its controller
func deleteEntity[T any](ctrl *services.ListController[T], query string, preview func(T) string, yes bool) error {
	desc := ctrl.Descriptor()
	item, err := selectEntity(ctrl.Items(), query, desc, preview)
	if err != nil {
		return err
	}

	confirmed := false
	confirmer := ports.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		ok, err := stdinConfirmer(yes).Confirm(ctx, prompt)
		confirmed = ok
		return ok, err
	})
	if err := ctrl.Delete(getContext(), desc.ID(item), confirmer); err != nil {
		fmt.Fprintln(stdout, ui.FormatError("Failed to delete "+desc.Label(item)))
		return err
	}
	if !confirmed {
		fmt.Fprintln(stdout, "Cancelled.")
		return nil
	}
	fmt.Fprintln(stdout, ui.FormatSuccess("Deleted "+desc.Label(item)))
	return nil
}
