package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/assetctl/internal/adapters/session"
	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/ports/mocks"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/logging"
)

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestShell(t *testing.T, gw *mocks.MockGateway, role string) *services.Shell {
	t.Helper()
	var sess *domain.Session
	if role != "" {
		sess = &domain.Session{Token: "tok-" + role, User: domain.User{ID: "u1", FullName: "Jane Doe", Email: "jane@example.com", Role: role}}
	}
	caps, err := services.NewCapabilities("", logging.Discard())
	require.NoError(t, err)
	shell, err := services.NewShell(mocks.NewMockSessionStore(sess), gw, caps, clockwork.NewFakeClock(), logging.Discard())
	require.NoError(t, err)
	return shell
}

func newTestAssetPage(t *testing.T, gw *mocks.MockGateway, shell *services.Shell) *listPage[domain.Asset, services.AssetDraft] {
	t.Helper()
	ctrl := services.NewListController(services.AssetList, services.AssetSource(gw), 10, logging.Discard())
	require.NoError(t, ctrl.Refresh(context.Background()))
	newForm := func() *services.FormSession[domain.Asset, services.AssetDraft] {
		return services.NewFormSession(services.NewAssetForm(gw), shell)
	}
	return newListPage(services.RouteAssets, "Assets", ctrl, newForm, assetTable, assetPreview, shell.Can)
}

func testAssets() []domain.Asset {
	return []domain.Asset{
		{ID: "a1", AssetID: "AST-1", Name: "Rifle", Type: "WEAPON", Status: domain.AssetAvailable, Condition: domain.ConditionGood},
		{ID: "a2", AssetID: "AST-2", Name: "Truck", Type: "VEHICLE", Status: domain.AssetMaintenance, Condition: domain.ConditionFair},
	}
}

func TestListPageKeysFollowRole(t *testing.T) {
	tests := []struct {
		role              string
		create, edit, del bool
	}{
		{domain.RoleAdmin, true, true, true},
		{domain.RoleLogisticsOfficer, true, true, false},
		{"member", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			gw := mocks.NewMockGateway()
			page := newTestAssetPage(t, gw, newTestShell(t, gw, tt.role))

			assert.Equal(t, tt.create, page.keys.New.Enabled())
			assert.Equal(t, tt.edit, page.keys.Edit.Enabled())
			assert.Equal(t, tt.del, page.keys.Delete.Enabled())
		})
	}
}

func TestListPageDisabledKeyDoesNothing(t *testing.T) {
	gw := mocks.NewMockGateway()
	gw.SetAssets(testAssets()...)
	page := newTestAssetPage(t, gw, newTestShell(t, gw, "member"))

	cmd := page.Update(keyPress("d"))
	assert.Nil(t, cmd)
	assert.Equal(t, listBrowse, page.mode)
	assert.Nil(t, page.target)
}

func TestListPageCursor(t *testing.T) {
	gw := mocks.NewMockGateway()
	gw.SetAssets(testAssets()...)
	page := newTestAssetPage(t, gw, newTestShell(t, gw, domain.RoleAdmin))

	page.Update(keyPress("j"))
	assert.Equal(t, 1, page.cursor)
	page.Update(keyPress("j"))
	assert.Equal(t, 1, page.cursor, "cursor stops at the last row")
	page.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, page.cursor)
}

func TestListPageDeleteFlow(t *testing.T) {
	gw := mocks.NewMockGateway()
	gw.SetAssets(testAssets()...)
	page := newTestAssetPage(t, gw, newTestShell(t, gw, domain.RoleAdmin))

	page.Update(keyPress("j"))
	page.Update(keyPress("d"))
	require.Equal(t, listConfirmDelete, page.mode)
	require.NotNil(t, page.target)
	assert.Equal(t, "a2", page.target.ID)
	assert.True(t, page.Capturing())
	assert.Contains(t, page.View(100, 30), "Truck")

	cmd := page.Update(keyPress("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, listBrowse, page.mode)

	msg, ok := cmd().(deletedMsg)
	require.True(t, ok)
	assert.NoError(t, msg.err)
	assert.Equal(t, "Truck", msg.label)
	assert.Equal(t, 1, gw.CallCount("DeleteAsset"))
	assert.Len(t, page.ctrl.Items(), 1)

	status, ok := page.Update(msg)().(statusMsg)
	require.True(t, ok)
	assert.Contains(t, status.message, "Deleted Truck")
	assert.Equal(t, 0, page.cursor, "cursor clamps to the remaining rows")
}

func TestListPageDeleteCancelled(t *testing.T) {
	gw := mocks.NewMockGateway()
	gw.SetAssets(testAssets()...)
	page := newTestAssetPage(t, gw, newTestShell(t, gw, domain.RoleAdmin))

	page.Update(keyPress("d"))
	require.Equal(t, listConfirmDelete, page.mode)

	cmd := page.Update(keyPress("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, listBrowse, page.mode)
	assert.Nil(t, page.target)
	assert.Equal(t, 0, gw.CallCount("DeleteAsset"))
}

func TestListPageDropsStaleLoad(t *testing.T) {
	gw := mocks.NewMockGateway()
	gw.SetAssets(testAssets()...)
	page := newTestAssetPage(t, gw, newTestShell(t, gw, domain.RoleAdmin))

	older := page.ctrl.BeginFetch()
	newer := page.ctrl.BeginFetch()

	page.Update(listLoadedMsg[domain.Asset]{route: services.RouteAssets, seq: older, items: nil})
	assert.Len(t, page.ctrl.Items(), 2, "stale result must not replace the snapshot")

	page.Update(listLoadedMsg[domain.Asset]{route: services.RouteAssets, seq: newer, items: testAssets()[:1]})
	assert.Len(t, page.ctrl.Items(), 1)
}

func TestListPageSearch(t *testing.T) {
	gw := mocks.NewMockGateway()
	gw.SetAssets(testAssets()...)
	page := newTestAssetPage(t, gw, newTestShell(t, gw, domain.RoleAdmin))

	page.Update(keyPress("/"))
	require.Equal(t, listSearch, page.mode)
	page.Update(keyPress("truck"))
	assert.Equal(t, "truck", page.ctrl.View().Search)
	assert.Len(t, page.ctrl.Filtered(), 1)

	page.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, listBrowse, page.mode)
	assert.Equal(t, "", page.ctrl.View().Search)
	assert.Len(t, page.ctrl.Filtered(), 2)
}

func TestListPageFormOpensForAllowedRole(t *testing.T) {
	gw := mocks.NewMockGateway()
	gw.SetAssets(testAssets()...)
	page := newTestAssetPage(t, gw, newTestShell(t, gw, domain.RoleAdmin))

	page.Update(keyPress("n"))
	require.Equal(t, listForm, page.mode)
	require.NotNil(t, page.form)
	assert.True(t, page.form.IsOpen())
	assert.False(t, page.form.IsEdit())

	page.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, listBrowse, page.mode)
	assert.Nil(t, page.form)
}

// stubPage records activations for shell routing tests
type stubPage struct {
	route       services.Route
	activated   int
	deactivated int
}

func (p *stubPage) Route() services.Route      { return p.route }
func (p *stubPage) Title() string              { return string(p.route) }
func (p *stubPage) Activate() tea.Cmd          { p.activated++; return nil }
func (p *stubPage) Deactivate()                { p.deactivated++ }
func (p *stubPage) Update(msg tea.Msg) tea.Cmd { return nil }
func (p *stubPage) View(width, height int) string {
	return "page " + string(p.route)
}
func (p *stubPage) Help() help.KeyMap { return dashboardKeys }
func (p *stubPage) Capturing() bool   { return false }

func newStubPages() (map[services.Route]*stubPage, []page) {
	routes := append([]services.Route{services.RouteLogin, services.RouteRegister}, services.ProtectedRoutes...)
	byRoute := make(map[services.Route]*stubPage, len(routes))
	pages := make([]page, 0, len(routes))
	for _, r := range routes {
		p := &stubPage{route: r}
		byRoute[r] = p
		pages = append(pages, p)
	}
	return byRoute, pages
}

func TestShellGuardsProtectedRoutes(t *testing.T) {
	gw := mocks.NewMockGateway()
	stubs, pages := newStubPages()
	m := newShellModel(newTestShell(t, gw, ""), pages, nil, clockwork.NewFakeClock())

	updated, _ := m.Update(navigateMsg{route: services.RouteAssets})
	m = updated.(shellModel)

	assert.Equal(t, services.RouteLogin, m.route)
	assert.Equal(t, 1, stubs[services.RouteLogin].activated)
	assert.Equal(t, 0, stubs[services.RouteAssets].activated)
}

func TestShellNavigatesBetweenPages(t *testing.T) {
	gw := mocks.NewMockGateway()
	stubs, pages := newStubPages()
	m := newShellModel(newTestShell(t, gw, domain.RoleAdmin), pages, nil, clockwork.NewFakeClock())

	updated, _ := m.Update(navigateMsg{route: services.RouteDashboard})
	m = updated.(shellModel)
	require.Equal(t, services.RouteDashboard, m.route)

	updated, _ = m.Update(keyPress("3"))
	m = updated.(shellModel)
	assert.Equal(t, services.RouteTransfers, m.route)
	assert.Equal(t, 1, stubs[services.RouteDashboard].deactivated)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(shellModel)
	assert.Equal(t, services.RouteAssignments, m.route)
}

func TestShellLogoutKey(t *testing.T) {
	gw := mocks.NewMockGateway()
	_, pages := newStubPages()
	shell := newTestShell(t, gw, domain.RoleAdmin)
	m := newShellModel(shell, pages, nil, clockwork.NewFakeClock())

	updated, _ := m.Update(navigateMsg{route: services.RouteAssets})
	m = updated.(shellModel)

	updated, _ = m.Update(keyPress("L"))
	m = updated.(shellModel)
	assert.Equal(t, services.RouteLogin, m.route)
	assert.Equal(t, services.Unauthenticated, shell.State())
}

func TestShellAppliesExternalSessionChange(t *testing.T) {
	gw := mocks.NewMockGateway()
	stubs, pages := newStubPages()
	shell := newTestShell(t, gw, domain.RoleAdmin)
	m := newShellModel(shell, pages, nil, clockwork.NewFakeClock())

	updated, _ := m.Update(navigateMsg{route: services.RouteAssets})
	m = updated.(shellModel)

	// Another process logged out
	updated, _ = m.Update(sessionChangedMsg{change: session.Change{}, ok: true})
	m = updated.(shellModel)
	assert.Equal(t, services.RouteLogin, m.route)
	assert.Equal(t, 1, stubs[services.RouteAssets].deactivated)

	// ...and logged back in
	sess := &domain.Session{Token: "new", User: domain.User{ID: "u2", Role: "member"}}
	updated, _ = m.Update(sessionChangedMsg{change: session.Change{Session: sess}, ok: true})
	m = updated.(shellModel)
	assert.Equal(t, services.RouteDashboard, m.route)
	assert.Equal(t, "u2", shell.User().ID)
}

func TestShellStatusMessageExpires(t *testing.T) {
	gw := mocks.NewMockGateway()
	_, pages := newStubPages()
	clock := clockwork.NewFakeClock()
	m := newShellModel(newTestShell(t, gw, domain.RoleAdmin), pages, nil, clock)

	updated, _ := m.Update(statusMsg{message: "saved"})
	m = updated.(shellModel)
	assert.Equal(t, "saved", m.message)

	updated, _ = m.Update(clearMessageMsg{})
	m = updated.(shellModel)
	assert.Equal(t, "saved", m.message, "message stays until it expires")

	clock.Advance(3 * time.Second)
	updated, _ = m.Update(clearMessageMsg{})
	m = updated.(shellModel)
	assert.Equal(t, "", m.message)
}

func TestDashboardDropsStaleMetrics(t *testing.T) {
	gw := mocks.NewMockGateway()
	poller := services.NewMetricsPoller(gw, clockwork.NewFakeClock(), time.Minute, logging.Discard())
	p := newDashboardPage(poller, "")
	p.gen = 2

	stale := &domain.Metrics{TotalAssets: 1}
	cmd := p.Update(metricsMsg{gen: 1, ok: true, res: services.MetricsResult{Metrics: stale}})
	assert.Nil(t, cmd)
	assert.Nil(t, p.metrics)

	fresh := &domain.Metrics{
		TotalAssets:        7,
		StatusDistribution: domain.StatusCounts{{Status: "AVAILABLE", Count: 7}},
	}
	cmd = p.Update(metricsMsg{gen: 2, ok: true, manual: true, res: services.MetricsResult{Metrics: fresh}})
	assert.Nil(t, cmd)
	require.NotNil(t, p.metrics)
	assert.Equal(t, 7, p.metrics.TotalAssets)
	assert.Contains(t, p.View(120, 30), "AVAILABLE")
}

func TestDashboardKeepsMetricsOnError(t *testing.T) {
	gw := mocks.NewMockGateway()
	poller := services.NewMetricsPoller(gw, clockwork.NewFakeClock(), time.Minute, logging.Discard())
	p := newDashboardPage(poller, "")
	p.gen = 1
	p.metrics = &domain.Metrics{TotalAssets: 3}

	p.Update(metricsMsg{gen: 1, ok: true, manual: true, res: services.MetricsResult{Err: errors.New("boom")}})
	require.NotNil(t, p.metrics)
	assert.Equal(t, 3, p.metrics.TotalAssets)
	assert.Contains(t, p.View(120, 30), "Last refresh failed")
}

func TestAuthPageRequiresFields(t *testing.T) {
	gw := mocks.NewMockGateway()
	p := newAuthPage(newTestShell(t, gw, ""), false, nil)
	p.Activate()

	cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "Email is required", p.err)
	assert.Equal(t, 0, gw.CallCount("Login"))
}

func TestAuthPageLogin(t *testing.T) {
	gw := mocks.NewMockGateway()
	gw.SetMe(&domain.User{ID: "u1", FullName: "Jane Doe", Email: "jane@example.com", Role: "member"}, "fresh-token")
	shell := newTestShell(t, gw, "")
	p := newAuthPage(shell, false, nil)
	p.Activate()

	p.inputs[authEmail].SetValue("jane@example.com")
	p.inputs[authPassword].SetValue("secret")

	cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, p.busy)

	res, ok := cmd().(authResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	assert.Equal(t, services.Authenticated, shell.State())

	next := p.Update(res)
	require.NotNil(t, next)
	assert.False(t, p.busy)
	assert.Equal(t, "", p.inputs[authPassword].Value(), "password is forgotten")
}

func TestAuthPageRegisterCyclesBase(t *testing.T) {
	gw := mocks.NewMockGateway()
	p := newAuthPage(newTestShell(t, gw, ""), true, []string{"Alpha", "Bravo"})
	p.Activate()

	for i := 0; i < len(p.inputs); i++ {
		p.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	require.True(t, p.onBase())

	p.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, p.base)
	p.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, p.base)
	assert.True(t, strings.Contains(p.View(100, 30), "Alpha"))
}

func testFormFields() *fakeForm {
	return newFakeForm(
		services.FieldView{Name: "name", Label: "Name", Required: true},
		services.FieldView{Name: "type", Label: "Type", Kind: services.FieldSelect, Value: "WEAPON",
			Choices: []services.Choice{{Value: "WEAPON", Label: "Weapon"}, {Value: "VEHICLE", Label: "Vehicle"}}},
		services.FieldView{Name: "base", Label: "Base", Locked: true, Value: "Alpha Base"},
	)
}

func TestFormModalEditsAndSubmits(t *testing.T) {
	form := testFormFields()
	m := newFormModal("New asset", "Asset created", services.RouteAssets, form, nil)
	require.Equal(t, 0, m.cursor)
	assert.False(t, m.keys.AddLine.Enabled())

	m, _ = m.update(keyPress("Rifle"))
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Rifle", form.set["name"])
	assert.Equal(t, 1, m.cursor)

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "VEHICLE", form.set["type"])

	// The locked base is skipped
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.view(100), "Alpha Base")

	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	res, ok := cmd().(formSubmittedMsg)
	require.True(t, ok)
	assert.NoError(t, res.err)
	assert.Equal(t, services.RouteAssets, res.route)
	assert.Equal(t, "Asset created", res.success)
}

func TestFormModalKeepsCursorOnRejectedValue(t *testing.T) {
	form := testFormFields()
	form.reject["name"] = "bad"
	m := newFormModal("New asset", "Asset created", services.RouteAssets, form, nil)

	m, _ = m.update(keyPress("bad"))
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.err, "invalid value")
}

func TestFormModalShowsSubmitError(t *testing.T) {
	m := newFormModal("New asset", "Asset created", services.RouteAssets, testFormFields(), nil)
	m.busy = true

	m, _ = m.update(formSubmittedMsg{route: services.RouteAssets, err: errors.New("serial number already exists")})
	assert.False(t, m.busy)
	assert.Equal(t, "serial number already exists", m.err)
	assert.Contains(t, m.view(100), "serial number already exists")
}
