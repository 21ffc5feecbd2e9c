package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/table"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/winnow/pkg/catalog"
	"github.com/oakwood-commons/winnow/pkg/filter"
)

// urlFields are tried in order when opening the selected entry in a browser.
var urlFields = []string{"official_url", "url", "homepage"}

// Model is the Bubble Tea model for the interactive catalog filter. It owns
// the filter controller, the filter input, and the passive bar components,
// and keeps them synchronized after every message.
type Model struct {
	// Core state: the fixed item set and its visibility controller.
	Controller *filter.Controller
	FieldSpec  catalog.FieldSpec

	// Components
	Tbl         table.Model
	FilterInput textinput.Model
	Status      StatusModel
	Footer      FooterModel
	Help        HelpModel
	Debug       DebugModel
	Layout      *LayoutManager

	// Derived render state, regenerated when the query or layout changes.
	Cards  *CardList
	Detail *DetailView

	// Identity shown in the chrome.
	AppName    string
	SourceName string // file name or "stdin", shown in the catalog border

	// Window / layout
	WinWidth         int
	WinHeight        int
	ForceWindowSize  bool
	DesiredWinWidth  int
	DesiredWinHeight int
	LayoutHeights    ComponentHeights

	// Table column widths (resolved from configured values by applyLayout)
	ConfiguredTitleColWidth int
	ConfiguredDetailsWidth  int
	TitleColWidth           int
	DetailsColWidth         int

	// UI state
	ViewMode      ViewMode
	SubtitleLines int
	Cursor        int // index into the visible item slice
	HelpVisible   bool
	DetailOpen    bool
	NoColor       bool
	Quitting      bool

	// Key handling
	KeyMode       KeyMode
	TypingActive  bool   // vim only: filter input focused
	PendingVimKey string // vim: pending first key of a gg sequence
	LastKey       string

	// Status message (cleared on the next state change)
	ErrMsg     string
	StatusType string // "error", "success", or ""

	// Debug
	DebugMode      bool
	DebugMaxEvents int
	DebugEvents    []DebugEvent
}

// DebugEvent is one buffered diagnostic line shown after the TUI exits.
type DebugEvent struct {
	Message string
}

// logEvent appends a diagnostic line to the debug ring buffer.
func (m *Model) logEvent(label string) {
	if !m.DebugMode {
		return
	}
	maxEvents := m.DebugMaxEvents
	if maxEvents <= 0 {
		maxEvents = 200
	}
	m.DebugEvents = append(m.DebugEvents, DebugEvent{Message: label})
	if len(m.DebugEvents) > maxEvents {
		m.DebugEvents = m.DebugEvents[len(m.DebugEvents)-maxEvents:]
	}
}

// InitialModel builds a Model over the given item set. The controller copies
// the slice, so the set is fixed from here on. Pass the result of
// catalog.Items, or any hand-built items when embedding.
func InitialModel(items []filter.Item) Model {
	ctrl := filter.New(items)

	columns := []table.Column{
		{Title: "TITLE", Width: DefaultTitleColWidth},
		{Title: "DETAILS", Width: DefaultDetailsWidth},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		// Small initial height; applyLayout resizes after the first WindowSizeMsg.
		table.WithHeight(5),
	)
	th := CurrentTheme()
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(borderForTheme(th)).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(0)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	t.SetStyles(s)

	fi := textinput.New()
	fi.Placeholder = "type to filter by title"
	fi.CharLimit = 200
	fi.SetWidth(80) // adjusted in applyLayout
	fi.Prompt = "> "
	fi.Focus()

	m := Model{
		Controller:              ctrl,
		FieldSpec:               catalog.DefaultFieldSpec(),
		Tbl:                     t,
		FilterInput:             fi,
		Status:                  NewStatusModel(),
		Footer:                  NewFooterModel(),
		Help:                    NewHelpModel(),
		Debug:                   NewDebugModel(),
		Layout:                  NewLayoutManager(0, 0),
		Cards:                   &CardList{},
		ViewMode:                DefaultViewMode,
		SubtitleLines:           1,
		KeyMode:                 DefaultKeyMode,
		ConfiguredTitleColWidth: DefaultTitleColWidth,
		DebugMaxEvents:          200,
	}

	if cfg, err := EmbeddedDefaultConfig(); err == nil && cfg.Debug.MaxEvents != nil {
		m.DebugMaxEvents = *cfg.Debug.MaxEvents
	}

	m.rebuildVisible(true)
	return m
}

// ApplyColorScheme applies or removes table color styling based on NoColor.
func (m *Model) ApplyColorScheme() {
	s := table.DefaultStyles()
	th := CurrentTheme()
	s.Header = s.Header.
		BorderStyle(borderForTheme(th)).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(0)

	baseCell := lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Cell = baseCell
	selected := baseCell

	if m.NoColor {
		s.Header = s.Header.
			UnsetForeground().
			UnsetBackground()
		selected = selected.
			UnsetForeground().
			UnsetBackground().
			Reverse(true)
		s.Cell = s.Cell.
			UnsetForeground().
			UnsetBackground()
	} else {
		s.Header = s.Header.
			Foreground(th.HeaderFG).
			Background(th.HeaderBG)
		selected = selected.
			Foreground(th.SelectedFG).
			Background(th.SelectedBG)
	}
	s.Selected = selected
	m.Tbl.SetStyles(s)
}

// AutoTitleColumnWidth computes a preferred TITLE column width from the
// visible rows, capped by maxPreset. Short titles shrink the column so the
// DETAILS column gets the space instead.
func (m *Model) AutoTitleColumnWidth(maxPreset int) int {
	maxTitle := 0
	for _, it := range m.Controller.Visible() {
		if w := lipgloss.Width(it.Title); w > maxTitle {
			maxTitle = w
		}
	}
	if maxTitle == 0 {
		return maxPreset
	}
	width := maxTitle + 2
	if width < 8 {
		width = 8
	}
	if maxPreset > 0 && width > maxPreset {
		width = maxPreset
	}
	return width
}

// visibleItems returns the currently shown items in document order.
func (m *Model) visibleItems() []filter.Item {
	return m.Controller.Visible()
}

// selectedItem returns the item under the cursor, if any.
func (m *Model) selectedItem() (filter.Item, bool) {
	visible := m.visibleItems()
	if m.Cursor < 0 || m.Cursor >= len(visible) {
		return filter.Item{}, false
	}
	return visible[m.Cursor], true
}

// rebuildVisible regenerates cards and table rows from the controller's
// current visible set. When resetCursor is true the selection returns to the
// top, which is what a query change wants; cursor movement passes false.
func (m *Model) rebuildVisible(resetCursor bool) {
	visible := m.visibleItems()

	if resetCursor {
		m.Cursor = 0
		m.Cards.ScrollTop = 0
	}
	if m.Cursor >= len(visible) {
		m.Cursor = len(visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}

	m.Cards.Cards = buildCards(visible, m.FieldSpec)
	m.Cards.Selected = m.Cursor

	m.SyncTableState(resetCursor)
}

// SyncTableState regenerates the table rows from the visible items and keeps
// the table cursor consistent with the model cursor. Rows truncate to the
// resolved column widths so the table never wraps.
func (m *Model) SyncTableState(resetCursorToZero ...bool) {
	visible := m.visibleItems()

	titleW := m.TitleColWidth
	if titleW <= 0 {
		titleW = DefaultTitleColWidth
	}
	detailsW := m.DetailsColWidth
	if detailsW <= 0 {
		detailsW = DefaultDetailsWidth
	}

	rows := make([]table.Row, 0, len(visible))
	for _, it := range visible {
		title := it.Title
		if title == "" {
			title = fmt.Sprintf("[%d]", it.Index)
		}
		rows = append(rows, table.Row{
			truncateCell(title, titleW),
			truncateCell(itemDetails(it, m.FieldSpec), detailsW),
		})
	}

	m.Tbl.SetColumns([]table.Column{
		{Title: "TITLE", Width: titleW},
		{Title: "DETAILS", Width: detailsW},
	})
	m.Tbl.SetRows(rows)

	if len(resetCursorToZero) > 0 && resetCursorToZero[0] {
		m.Tbl.SetCursor(0)
	} else if len(rows) > 0 {
		cursor := m.Cursor
		if cursor >= len(rows) {
			cursor = len(rows) - 1
		}
		m.Tbl.SetCursor(cursor)
	}
}

// itemDetails builds the DETAILS cell for an item: subtitle first, then the
// secondary fields as "field: value" pairs.
func itemDetails(it filter.Item, spec catalog.FieldSpec) string {
	parts := []string{}
	if spec.Subtitle != "" {
		if v, ok := catalog.Field(it.Source, spec.Subtitle); ok && v != nil {
			if s := flattenText(catalog.Stringify(v)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	for _, sf := range spec.Secondary {
		if v, ok := catalog.Field(it.Source, sf); ok && v != nil {
			if s := flattenText(catalog.Stringify(v)); s != "" {
				parts = append(parts, sf+": "+s)
			}
		}
	}
	return strings.Join(parts, " · ")
}

// flattenText collapses newlines so multiline values stay on one table row.
func flattenText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

// truncateCell trims a cell value to the column width with an ellipsis.
func truncateCell(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width-3, "") + "..."
}

// applyLayout recalculates component sizes from the current window size.
// force regenerates the table rows even when only heights changed.
func (m *Model) applyLayout(force ...bool) {
	m.Layout.SetDimensions(m.WinWidth, m.WinHeight)
	heights := m.Layout.CalculateHeights(m.DebugMode)
	m.LayoutHeights = heights

	m.FilterInput.SetWidth(m.Layout.CalculateInputWidth())

	titleW, detailsW := m.Layout.CalculateColumnWidths(m.ConfiguredTitleColWidth, m.ConfiguredDetailsWidth, m.AutoTitleColumnWidth)
	m.TitleColWidth = titleW
	m.DetailsColWidth = detailsW

	tableHeight := heights.CatalogHeight
	if tableHeight < MinCatalogHeight {
		tableHeight = MinCatalogHeight
	}
	m.Tbl.SetHeight(tableHeight)
	m.Tbl.SetWidth(m.WinWidth - PanelSideWidth)

	m.Cards.Width = m.WinWidth
	m.Cards.Height = heights.CatalogHeight

	if m.Detail != nil {
		m.Detail.Width = m.WinWidth
		m.Detail.Height = heights.CatalogHeight + PanelBorderLines
	}

	if len(force) > 0 && force[0] {
		m.SyncTableState()
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// applyQuery pushes the filter input's current value through the controller
// and regenerates the visible state. A query that normalizes to the current
// one leaves the shown set untouched.
func (m *Model) applyQuery() {
	before := m.Controller.Query()
	m.Controller.SetQuery(m.FilterInput.Value())
	if m.Controller.Query() == before {
		return
	}
	m.clearMessage()
	m.rebuildVisible(true)
	m.logEvent(fmt.Sprintf("query %q -> %d/%d", m.Controller.Query(), m.Controller.VisibleCount(), m.Controller.Len()))
}

// clearQuery resets the input and shows the full catalog again.
func (m *Model) clearQuery() {
	m.FilterInput.SetValue("")
	m.applyQuery()
}

func (m *Model) clearMessage() {
	m.ErrMsg = ""
	m.StatusType = ""
}

func (m *Model) setError(msg string) {
	m.ErrMsg = msg
	m.StatusType = "error"
}

func (m *Model) setSuccess(msg string) {
	m.ErrMsg = msg
	m.StatusType = "success"
}

// moveCursor shifts the selection by delta within the visible items.
func (m *Model) moveCursor(delta int) {
	visible := m.visibleItems()
	if len(visible) == 0 {
		m.Cursor = 0
		return
	}
	m.Cursor += delta
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor >= len(visible) {
		m.Cursor = len(visible) - 1
	}
	m.Cards.Selected = m.Cursor
	m.Tbl.SetCursor(m.Cursor)
}

func (m *Model) cursorToTop() {
	m.Cursor = 0
	m.Cards.Selected = 0
	m.Cards.ScrollTop = 0
	m.Tbl.SetCursor(0)
}

func (m *Model) cursorToBottom() {
	visible := m.visibleItems()
	if len(visible) == 0 {
		return
	}
	m.Cursor = len(visible) - 1
	m.Cards.Selected = m.Cursor
	m.Tbl.SetCursor(m.Cursor)
}

// openDetail opens the detail overlay for the selected item.
func (m *Model) openDetail() {
	item, ok := m.selectedItem()
	if !ok {
		return
	}
	m.Detail = buildDetailView(item.Source, m.FieldSpec, m.WinWidth, m.LayoutHeights.CatalogHeight+PanelBorderLines)
	m.DetailOpen = true
}

func (m *Model) closeDetail() {
	m.DetailOpen = false
	m.Detail = nil
}

// inputFocused reports whether printable keys feed the filter input. The
// function and emacs modes keep the input focused at all times; vim requires
// '/' first.
func (m *Model) inputFocused() bool {
	if m.KeyMode == KeyModeVim {
		return m.TypingActive
	}
	return true
}

// Update implements tea.Model. Every keystroke resolves synchronously: the
// controller pass, cursor clamping, and component sync all finish before the
// next message is read, so the visible set is always consistent with the
// latest query.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.syncAllComponents()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		targetW := msg.Width
		targetH := msg.Height
		if m.ForceWindowSize {
			if m.DesiredWinWidth > 0 {
				targetW = m.DesiredWinWidth
			}
			if m.DesiredWinHeight > 0 {
				targetH = m.DesiredWinHeight
			}
		}
		if m.WinWidth == targetW && m.WinHeight == targetH {
			return m, nil
		}
		m.WinWidth = targetW
		m.WinHeight = targetH
		m.applyLayout(true)
		return m, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		m.LastKey = keyStr
		m.logEvent("key " + keyStr)

		if keyStr == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}

		// The help overlay is modal: it closes on its own key or esc and
		// swallows everything else.
		if m.HelpVisible {
			action := m.keyActionFor(keyStr)
			if keyStr == "esc" || action == ActionHelp {
				m.HelpVisible = false
			}
			return m, nil
		}

		if m.DetailOpen {
			return m.updateDetail(keyStr)
		}

		// Universal navigation keys work in every mode.
		switch keyStr {
		case "up":
			m.moveCursor(-1)
			return m, nil
		case "down":
			m.moveCursor(1)
			return m, nil
		case "home":
			m.cursorToTop()
			return m, nil
		case "end":
			m.cursorToBottom()
			return m, nil
		case "enter":
			m.openDetail()
			return m, nil
		case "esc":
			return m.handleEscape()
		}

		if action := m.keyActionFor(keyStr); action != ActionNone {
			return m.dispatchAction(action)
		}

		// Everything else feeds the filter input when it is focused.
		if m.inputFocused() {
			if km, ok := msg.(tea.KeyPressMsg); ok {
				var cmd tea.Cmd
				m.FilterInput, cmd = m.FilterInput.Update(km)
				m.applyQuery()
				return m, cmd
			}
		}
		return m, nil
	}

	return m, nil
}

// updateDetail handles keys while the detail overlay is open.
func (m *Model) updateDetail(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "esc", "enter", "q":
		m.closeDetail()
	case "up", "k":
		if m.Detail != nil && m.Detail.ScrollTop > 0 {
			m.Detail.ScrollTop--
		}
	case "down", "j":
		if m.Detail != nil {
			m.Detail.ScrollTop++
		}
	default:
		if action := m.keyActionFor(keyStr); action == ActionQuit {
			m.Quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// handleEscape implements the mode-dependent esc behavior: vim leaves typing
// mode first and clears the filter from normal mode; the other modes clear
// the filter directly.
func (m *Model) handleEscape() (tea.Model, tea.Cmd) {
	if m.KeyMode == KeyModeVim {
		if m.TypingActive {
			m.TypingActive = false
			m.FilterInput.Blur()
			return m, nil
		}
		m.clearQuery()
		return m, nil
	}
	m.clearQuery()
	return m, nil
}

// dispatchAction executes a resolved key action. Menu-backed actions route
// through the registered menu handlers so embedders can override them.
func (m *Model) dispatchAction(action KeyAction) (tea.Model, tea.Cmd) {
	switch action {
	case ActionDown:
		m.moveCursor(1)
	case ActionUp:
		m.moveCursor(-1)
	case ActionTop:
		m.cursorToTop()
	case ActionBottom:
		m.cursorToBottom()
	case ActionDetail:
		m.openDetail()
	case ActionFilter:
		m.TypingActive = true
		m.FilterInput.Focus()
	case ActionClear:
		m.clearQuery()
	case ActionHelp, ActionCopy, ActionOpen, ActionView, ActionQuit:
		return m, m.runMenuAction(action)
	}
	return m, nil
}

// keyActionToMenuName maps dispatchable actions to their menu entry names.
var keyActionToMenuName = map[KeyAction]string{
	ActionHelp: "help",
	ActionCopy: "copy",
	ActionOpen: "open",
	ActionView: "view",
	ActionQuit: "quit",
}

// runMenuAction executes the registered handler for a menu-backed action.
func (m *Model) runMenuAction(action KeyAction) tea.Cmd {
	name, ok := keyActionToMenuName[action]
	if !ok {
		return nil
	}
	item := GetItemForAction(name)
	if item != nil && !item.Enabled {
		return nil
	}
	handlerName := name
	if item != nil && item.Action != "" {
		handlerName = item.Action
	}
	if handler, ok := CurrentMenuActions()[handlerName]; ok && handler != nil {
		return handler(m)
	}
	return nil
}

// menuActionHelp toggles the help overlay.
func menuActionHelp(m *Model) tea.Cmd {
	m.HelpVisible = !m.HelpVisible
	return nil
}

// menuActionCopy copies the selected title to the system clipboard.
func menuActionCopy(m *Model) tea.Cmd {
	item, ok := m.selectedItem()
	if !ok {
		m.setError("nothing selected")
		return nil
	}
	if err := CopyToClipboard(item.Title); err != nil {
		m.setError(fmt.Sprintf("copy failed: %v", err))
		return nil
	}
	m.setSuccess(fmt.Sprintf("Copied: %s", item.Title))
	return nil
}

// menuActionOpen opens the selected entry's URL in the default browser.
func menuActionOpen(m *Model) tea.Cmd {
	item, ok := m.selectedItem()
	if !ok {
		m.setError("nothing selected")
		return nil
	}
	url := ""
	for _, field := range urlFields {
		if v, ok := catalog.Field(item.Source, field); ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				url = strings.TrimSpace(s)
				break
			}
		}
	}
	if url == "" {
		m.setError("entry has no URL")
		return nil
	}
	if err := OpenURL(url); err != nil {
		m.setError(fmt.Sprintf("open failed: %v", err))
		return nil
	}
	m.setSuccess(fmt.Sprintf("Opened: %s", url))
	return nil
}

// menuActionView toggles between the card list and the table view.
func menuActionView(m *Model) tea.Cmd {
	m.ViewMode = m.ViewMode.toggled()
	m.applyLayout(true)
	return nil
}

// menuActionQuit exits the program.
func menuActionQuit(m *Model) tea.Cmd {
	m.Quitting = true
	return tea.Quit
}

// syncAllComponents pushes model state into the passive bar components so
// View stays free of mutations.
func (m *Model) syncAllComponents() {
	m.syncStatus()
	m.syncFooter()
	m.syncHelp()
	m.syncDebug()
}

func (m *Model) syncStatus() {
	m.Status.ErrMsg = m.ErrMsg
	m.Status.StatusType = m.StatusType
	m.Status.FilterQuery = m.Controller.Query()
	m.Status.CursorIndex = 0
	if m.Controller.VisibleCount() > 0 {
		m.Status.CursorIndex = m.Cursor + 1
	}
	m.Status.VisibleCount = m.Controller.VisibleCount()
	m.Status.TotalCount = m.Controller.Len()
	m.Status.HelpVisible = m.HelpVisible
	if item := GetItemForAction("help"); item != nil {
		m.Status.HelpKeyLabel = keyLabelForMode(item.Keys, m.KeyMode)
	}
	m.Status.NoColor = m.NoColor
	m.Status.SetWidth(m.WinWidth)
}

func (m *Model) syncFooter() {
	m.Footer.NoColor = m.NoColor
	m.Footer.KeyMode = m.KeyMode
	m.Footer.SetWidth(m.WinWidth)
}

func (m *Model) syncHelp() {
	m.Help.Visible = m.HelpVisible
	m.Help.NoColor = m.NoColor
	m.Help.KeyMode = m.KeyMode
	m.Help.SetWidth(m.WinWidth)
}

func (m *Model) syncDebug() {
	m.Debug.NoColor = m.NoColor
	m.Debug.SetWidth(m.WinWidth)
	m.Debug.SetVisible(m.DebugMode)
	if !m.DebugMode {
		return
	}

	firstCard := ""
	if len(m.Cards.Cards) > 0 {
		firstCard = truncateCell(m.Cards.Cards[0].Title, 16)
	}
	info := DebugInfo{
		WinWidth:            m.WinWidth,
		WinHeight:           m.WinHeight,
		CatalogHeight:       m.LayoutHeights.CatalogHeight,
		TitleColWidth:       m.TitleColWidth,
		DetailsColWidth:     m.DetailsColWidth,
		VisibleItems:        m.Controller.VisibleCount(),
		TotalItems:          m.Controller.Len(),
		Cursor:              m.Cursor,
		ScrollTop:           m.Cards.ScrollTop,
		ViewMode:            string(m.ViewMode),
		TypingActive:        m.TypingActive,
		DetailOpen:          m.DetailOpen,
		HelpVisible:         m.HelpVisible,
		Query:               m.Controller.Query(),
		FirstCardPreview:    firstCard,
		LayoutInputHeight:   m.LayoutHeights.InputHeight,
		LayoutCatalogHeight: m.LayoutHeights.CatalogHeight,
		LayoutStatusHeight:  m.LayoutHeights.StatusHeight,
		LayoutDebugHeight:   m.LayoutHeights.DebugHeight,
		LayoutFooterHeight:  m.LayoutHeights.FooterHeight,
	}
	stateKey := fmt.Sprintf("%dx%d|%d/%d|%d|%s|%v%v%v|%s",
		info.WinWidth, info.WinHeight, info.VisibleItems, info.TotalItems,
		info.Cursor, info.ViewMode, info.TypingActive, info.DetailOpen,
		info.HelpVisible, info.Query)
	m.Debug.UpdateDebugInfo(stateKey, info)
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	m.syncAllComponents()
	view := m.renderFrame()
	if m.NoColor {
		view = stripANSIExceptInverse(view)
	}
	v := tea.NewView(view)
	v.AltScreen = true
	return v
}

// renderFrame composes the full screen: input panel, catalog panel, status
// bar, optional debug bar, footer.
func (m *Model) renderFrame() string {
	width := m.WinWidth
	if width <= 0 {
		width = 92
	}
	th := CurrentTheme()
	border := borderForTheme(th)

	heights := m.LayoutHeights
	if heights.CatalogHeight == 0 && m.WinHeight > 0 {
		heights = m.Layout.CalculateHeights(m.DebugMode)
	}
	catalogHeight := heights.CatalogHeight
	if catalogHeight < MinCatalogHeight {
		catalogHeight = MinCatalogHeight
	}

	appName := m.AppName
	if appName == "" {
		appName = "winnow"
	}
	inputPanel := panelWithTitle(appName, m.FilterInput.View(), width, InputPanelLines, border, m.NoColor)

	catalogTitle := "Catalog"
	content := ""
	switch {
	case m.HelpVisible:
		catalogTitle = "Help"
		content = clampANSITextHeight(m.Help.View(), catalogHeight)
	case m.DetailOpen && m.Detail != nil:
		if m.Detail.TitleText != "" {
			catalogTitle = m.Detail.TitleText
		}
		m.Detail.Width = width
		m.Detail.Height = catalogHeight + PanelBorderLines
		content = renderDetailView(m.Detail, m.NoColor)
	case m.ViewMode == ViewModeTable:
		content = m.Tbl.View()
	default:
		m.Cards.Width = width
		m.Cards.Height = catalogHeight
		m.Cards.Selected = m.Cursor
		content = renderCardList(m.Cards, m.SubtitleLines, len(m.FieldSpec.Secondary) > 0, m.NoColor, m.Controller.Len())
	}

	catalogPanel := panelWithTitle(catalogTitle, content, width, catalogHeight+PanelBorderLines, border, m.NoColor)
	countLabel := fmt.Sprintf("%d/%d", m.Controller.VisibleCount(), m.Controller.Len())
	catalogPanel = addBottomLabel(catalogPanel, m.SourceName, countLabel, width)

	sections := []string{inputPanel, catalogPanel, strings.TrimRight(m.Status.View(), "\n")}
	if m.DebugMode {
		if bar := strings.TrimRight(m.Debug.View(), "\n"); bar != "" {
			sections = append(sections, bar)
		}
	}
	sections = append(sections, m.Footer.View())

	return strings.Join(sections, "\n")
}

func stripANSI(s string) string {
	return ansiRegexp.ReplaceAllString(s, "")
}

// stripANSIExceptInverse removes color codes but preserves inverse video so
// selection highlighting stays visible in no-color mode.
func stripANSIExceptInverse(s string) string {
	return ansiRegexp.ReplaceAllStringFunc(s, func(seq string) string {
		switch seq {
		case "\x1b[7m", "\x1b[27m", "\x1b[0m", "\x1b[m":
			return seq
		default:
			return ""
		}
	})
}
