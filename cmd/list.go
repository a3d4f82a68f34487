package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/core/ports"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

// listFlags are shared by every list command
type listFlags struct {
	search   string
	status   string
	page     int
	pageSize int
	all      bool
}

func (f *listFlags) register(cmd *cobra.Command, statuses []string) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Case-insensitive search")
	cmd.Flags().StringVar(&f.status, "status", "", "Filter by status ("+strings.Join(statuses, ", ")+")")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Rows per page (5, 10 or 25)")
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "Show every matching row")
}

// entityTable renders one entity type as a table
type entityTable[T any] struct {
	title   string
	noun    string
	columns []ui.TableColumn
	row     func(T) []string
}

// loadList builds a list controller for desc and fetches the collection
func loadList[T any](desc services.ListDescriptor[T], source ports.EntitySource[T]) (*services.ListController[T], error) {
	ctrl := services.NewListController(desc, source, pageSize(), appLogger)
	if err := ctrl.Refresh(getContext()); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// runEntityList fetches, filters and prints one page of a collection
func runEntityList[T any](ctrl *services.ListController[T], flags listFlags, table entityTable[T]) error {
	desc := ctrl.Descriptor()
	if flags.status != "" {
		status := matchStatus(desc.Statuses, flags.status)
		if status == "" {
			return fmt.Errorf("unknown status %q (expected one of %s)", flags.status, strings.Join(desc.Statuses, ", "))
		}
		ctrl.SetStatusFilter(status)
	}
	ctrl.SetSearchTerm(flags.search)
	if flags.pageSize > 0 {
		ctrl.SetPageSize(flags.pageSize)
	}
	if flags.all {
		ctrl.SetPageSize(len(ctrl.Items()) + 1)
	}
	ctrl.SetPage(flags.page - 1)

	view := ctrl.View()
	if view.Total == 0 {
		if flags.search != "" || flags.status != "" {
			fmt.Fprintln(stdout, ui.FormatWarning(fmt.Sprintf("No %s match your filters.", table.noun)))
		} else {
			fmt.Fprintln(stdout, ui.FormatWarning(fmt.Sprintf("No %s found.", table.noun)))
		}
		return nil
	}

	fmt.Fprintln(stdout, ui.FormatTitle(table.title))
	fmt.Fprintln(stdout)

	t := ui.NewTable(table.columns)
	for _, item := range view.Items {
		t.AddRow(table.row(item))
	}
	fmt.Fprint(stdout, t.Render())
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, ui.FormatMuted(pageSummary(view.Page, view.PageCount, view.Total, table.noun)))
	return nil
}

// matchStatus resolves a status flag case-insensitively
func matchStatus(statuses []string, value string) string {
	for _, s := range statuses {
		if strings.EqualFold(s, value) {
			return s
		}
	}
	return ""
}

func pageSummary(page, pageCount, total int, noun string) string {
	return fmt.Sprintf("Page %d of %d  |  %d %s", page+1, pageCount, total, noun)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
