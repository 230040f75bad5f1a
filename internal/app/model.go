package app

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ensurax-tui/internal/api"
	"ensurax-tui/internal/chat"
	"ensurax-tui/internal/storage"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type tab int

const (
	tabOverview tab = iota
	tabClaims
	tabRisk
	tabOps
	tabC360
)

func (t tab) label() string {
	switch t {
	case tabClaims:
		return "Claims"
	case tabRisk:
		return "Risk"
	case tabOps:
		return "Operations"
	case tabC360:
		return "Customer 360"
	default:
		return "Overview"
	}
}

func nextTab(t tab) tab {
	if t == tabC360 {
		return tabOverview
	}
	return t + 1
}

func prevTab(t tab) tab {
	if t == tabOverview {
		return tabC360
	}
	return t - 1
}

type overviewLoadedMsg struct {
	data *api.OverviewData
	err  error
}

type claimsLoadedMsg struct {
	paidVsReserve []api.TwoSeriesPoint
	severity      []api.BreakdownItem
	openClosed    []api.RatioPoint
	err           error
}

type riskLoadedMsg struct {
	byPeril     []api.BreakdownItem
	catExposure []api.BreakdownItem
	err         error
}

type opsLoadedMsg struct {
	fnol    []api.SeriesPoint
	sla     []api.SLAPoint
	backlog []api.BreakdownItem
	err     error
}

type c360LoadedMsg struct {
	retention    []api.SeriesPoint
	crossSell    []api.BreakdownItem
	channelMix   []api.BreakdownItem
	demographics []api.DemographicRow
	err          error
}

type healthMsg struct {
	status string
	err    error
}

type healthTickMsg struct {
	at time.Time
}

type askRepliedMsg struct {
	raw json.RawMessage
	err error
}

type uiStateSavedMsg struct {
	err error
}

const (
	fetchTimeout     = 10 * time.Second
	askTimeout       = 60 * time.Second
	minDashboardCols = 40
)

type ModelOptions struct {
	Theme              string
	HealthPollInterval time.Duration
}

type Model struct {
	client  *api.Client
	store   *storage.Store
	session *chat.Session
	logger  *zap.Logger

	ready  bool
	width  int
	height int

	activeTab tab
	quick     quickRange
	rng       api.Range
	th        theme

	overview        *api.OverviewData
	overviewLoading bool

	claimsPaidVsReserve []api.TwoSeriesPoint
	claimsSeverity      []api.BreakdownItem
	claimsOpenClosed    []api.RatioPoint
	claimsLoaded        bool
	claimsLoading       bool

	riskByPeril     []api.BreakdownItem
	riskCatExposure []api.BreakdownItem
	riskLoaded      bool
	riskLoading     bool

	opsFNOL    []api.SeriesPoint
	opsSLA     []api.SLAPoint
	opsBacklog []api.BreakdownItem
	opsLoaded  bool
	opsLoading bool

	c360Retention    []api.SeriesPoint
	c360CrossSell    []api.BreakdownItem
	c360ChannelMix   []api.BreakdownItem
	c360Demographics []api.DemographicRow
	c360Loaded       bool
	c360Loading      bool

	healthKnown  bool
	healthUp     bool
	healthStatus string
	healthPoll   time.Duration

	dock       Dock
	composer   textinput.Model
	transcript viewport.Model
	spinner    spinner.Model

	statusText string
	errorText  string
}

func NewModel(client *api.Client, store *storage.Store, session *chat.Session, logger *zap.Logger) Model {
	return NewModelWithOptions(client, store, session, logger, ModelOptions{})
}

func NewModelWithOptions(client *api.Client, store *storage.Store, session *chat.Session, logger *zap.Logger, opts ModelOptions) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	saved := storage.DefaultUIState()
	if store != nil {
		saved = store.LoadUIState()
	}
	themeName := saved.Theme
	if strings.TrimSpace(opts.Theme) != "" {
		themeName = opts.Theme
	}

	poll := opts.HealthPollInterval
	if poll <= 0 {
		poll = 30 * time.Second
	}

	composer := textinput.New()
	composer.Prompt = "> "
	composer.Placeholder = "Ask about GWP, loss ratio, claims..."
	composer.CharLimit = 2048
	composer.Width = 40
	composer.Focus()

	transcript := viewport.New(44, 20)

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	model := Model{
		client:     client,
		store:      store,
		session:    session,
		logger:     logger,
		activeTab:  tabOverview,
		quick:      rangeAll,
		th:         themeByName(themeName),
		healthPoll: poll,
		dock:       NewDock(saved.DockWidth, saved.DockVisible),
		composer:   composer,
		transcript: transcript,
		spinner:    spin,
		statusText: "Connecting to EnsuraX API...",
	}
	model.refreshTranscript()
	return model
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadOverviewCmd(m.client, m.rng),
		checkHealthCmd(m.client),
		healthTickCmd(m.healthPoll),
		m.spinner.Tick,
	)
}

func loadOverviewCmd(client *api.Client, rng api.Range) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		data, err := client.Overview(ctx, rng)
		return overviewLoadedMsg{data: data, err: err}
	}
}

func loadClaimsCmd(client *api.Client, rng api.Range) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var out claimsLoadedMsg
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			points, err := client.PaidVsReserve(groupCtx, rng)
			out.paidVsReserve = points
			return err
		})
		group.Go(func() error {
			items, err := client.SeverityHistogram(groupCtx)
			out.severity = items
			return err
		})
		group.Go(func() error {
			points, err := client.OpenVsClosedRatio(groupCtx, rng)
			out.openClosed = points
			return err
		})
		out.err = group.Wait()
		return out
	}
}

func loadRiskCmd(client *api.Client, rng api.Range) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var out riskLoadedMsg
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			items, err := client.ClaimsByPeril(groupCtx, rng, 0)
			out.byPeril = items
			return err
		})
		group.Go(func() error {
			items, err := client.CatExposure(groupCtx, rng, "")
			out.catExposure = items
			return err
		})
		out.err = group.Wait()
		return out
	}
}

func loadOpsCmd(client *api.Client, rng api.Range) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var out opsLoadedMsg
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			points, err := client.FNOL(groupCtx, rng)
			out.fnol = points
			return err
		})
		group.Go(func() error {
			points, err := client.SLABreaches(groupCtx, rng)
			out.sla = points
			return err
		})
		group.Go(func() error {
			items, err := client.BacklogByAgeBucket(groupCtx, "")
			out.backlog = items
			return err
		})
		out.err = group.Wait()
		return out
	}
}

func loadC360Cmd(client *api.Client, rng api.Range) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var out c360LoadedMsg
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			points, err := client.Retention(groupCtx, rng)
			out.retention = points
			return err
		})
		group.Go(func() error {
			items, err := client.CrossSellDistribution(groupCtx)
			out.crossSell = items
			return err
		})
		group.Go(func() error {
			items, err := client.ChannelMix(groupCtx, rng)
			out.channelMix = items
			return err
		})
		group.Go(func() error {
			rows, err := client.Demographics(groupCtx)
			out.demographics = rows
			return err
		})
		out.err = group.Wait()
		return out
	}
}

func checkHealthCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status, err := client.Health(ctx)
		return healthMsg{status: status, err: err}
	}
}

func healthTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(at time.Time) tea.Msg {
		return healthTickMsg{at: at}
	})
}

func askCmd(session *chat.Session, question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()
		raw, err := session.Ask(ctx, question)
		return askRepliedMsg{raw: raw, err: err}
	}
}

func saveUIStateCmd(store *storage.Store, state storage.UIState) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return uiStateSavedMsg{}
		}
		return uiStateSavedMsg{err: store.SaveUIState(state)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizePanels()
		return m, nil

	case spinner.TickMsg:
		if !m.anythingLoading() && !m.session.Sending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case healthTickMsg:
		return m, tea.Batch(checkHealthCmd(m.client), healthTickCmd(m.healthPoll))

	case healthMsg:
		m.healthKnown = true
		if msg.err != nil {
			m.healthUp = false
			m.healthStatus = msg.err.Error()
			return m, nil
		}
		m.healthUp = strings.EqualFold(strings.TrimSpace(msg.status), "ok")
		m.healthStatus = msg.status
		return m, nil

	case overviewLoadedMsg:
		m.overviewLoading = false
		if msg.err != nil {
			m.errorText = "Overview load failed: " + msg.err.Error()
			return m, nil
		}
		m.overview = msg.data
		m.errorText = ""
		m.statusText = "Overview refreshed (" + m.quick.label() + ")"
		return m, nil

	case claimsLoadedMsg:
		m.claimsLoading = false
		if msg.err != nil {
			m.errorText = "Claims load failed: " + msg.err.Error()
			return m, nil
		}
		m.claimsPaidVsReserve = msg.paidVsReserve
		m.claimsSeverity = msg.severity
		m.claimsOpenClosed = msg.openClosed
		m.claimsLoaded = true
		m.errorText = ""
		m.statusText = "Claims refreshed (" + m.quick.label() + ")"
		return m, nil

	case riskLoadedMsg:
		m.riskLoading = false
		if msg.err != nil {
			m.errorText = "Risk load failed: " + msg.err.Error()
			return m, nil
		}
		m.riskByPeril = msg.byPeril
		m.riskCatExposure = msg.catExposure
		m.riskLoaded = true
		m.errorText = ""
		m.statusText = "Risk refreshed (" + m.quick.label() + ")"
		return m, nil

	case opsLoadedMsg:
		m.opsLoading = false
		if msg.err != nil {
			m.errorText = "Operations load failed: " + msg.err.Error()
			return m, nil
		}
		m.opsFNOL = msg.fnol
		m.opsSLA = msg.sla
		m.opsBacklog = msg.backlog
		m.opsLoaded = true
		m.errorText = ""
		m.statusText = "Operations refreshed (" + m.quick.label() + ")"
		return m, nil

	case c360LoadedMsg:
		m.c360Loading = false
		if msg.err != nil {
			m.errorText = "Customer 360 load failed: " + msg.err.Error()
			return m, nil
		}
		m.c360Retention = msg.retention
		m.c360CrossSell = msg.crossSell
		m.c360ChannelMix = msg.channelMix
		m.c360Demographics = msg.demographics
		m.c360Loaded = true
		m.errorText = ""
		m.statusText = "Customer 360 refreshed (" + m.quick.label() + ")"
		return m, nil

	case askRepliedMsg:
		if msg.err != nil {
			m.session.Fail(msg.err)
			m.statusText = "Assistant request failed."
		} else {
			m.session.Complete(msg.raw)
			m.statusText = "Assistant replied."
		}
		m.refreshTranscript()
		return m, nil

	case uiStateSavedMsg:
		if msg.err != nil {
			m.logger.Warn("ui state save failed", zap.Error(msg.err))
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m.switchTab(nextTab(m.activeTab))
		case "shift+tab", "backtab":
			return m.switchTab(prevTab(m.activeTab))
		case "ctrl+d":
			m.dock.Toggle()
			m.resizePanels()
			return m, saveUIStateCmd(m.store, m.uiState())
		case "ctrl+t":
			m.th = m.th.next()
			m.refreshTranscript()
			return m, saveUIStateCmd(m.store, m.uiState())
		case "ctrl+e":
			m.quick = nextQuickRange(m.quick)
			m.rng = m.quick.resolve(time.Now())
			m.invalidateAll()
			return m.reloadActiveTab()
		case "ctrl+r":
			m.invalidateTab(m.activeTab)
			return m.reloadActiveTab()
		case "ctrl+l":
			m.session.Clear()
			m.refreshTranscript()
			m.statusText = "Conversation cleared."
			return m, nil
		case "enter":
			userMsg, ok := m.session.Begin(m.composer.Value())
			if !ok {
				return m, nil
			}
			m.composer.Reset()
			m.refreshTranscript()
			m.statusText = "Asking the assistant..."
			return m, tea.Batch(askCmd(m.session, userMsg.Content), m.spinner.Tick)
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
		if msg.Button == tea.MouseButtonLeft && m.onDockHandle(msg.X) {
			m.dock.PointerDown(msg.X * dockUnitsPerCell)
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.dock.Dragging() {
			m.dock.PointerMove(msg.X * dockUnitsPerCell)
			m.resizePanels()
		}
		return m, nil

	case tea.MouseActionRelease:
		if m.dock.Dragging() {
			m.dock.PointerUp()
			m.resizePanels()
			return m, saveUIStateCmd(m.store, m.uiState())
		}
		return m, nil
	}
	return m, nil
}

// onDockHandle reports whether a terminal column falls on the dock's left
// border, the grab zone for the resize gesture.
func (m Model) onDockHandle(x int) bool {
	if !m.dock.Visible() || m.width <= 0 {
		return false
	}
	handle := m.width - m.dock.Cells()
	return x >= handle-1 && x <= handle
}

func (m Model) switchTab(next tab) (tea.Model, tea.Cmd) {
	m.activeTab = next
	m.statusText = "Viewing " + next.label()
	return m.reloadActiveTab()
}

// reloadActiveTab kicks off a fetch for the active tab unless its data is
// already present or in flight.
func (m Model) reloadActiveTab() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case tabOverview:
		if m.overview != nil || m.overviewLoading {
			return m, nil
		}
		m.overviewLoading = true
		return m, tea.Batch(loadOverviewCmd(m.client, m.rng), m.spinner.Tick)
	case tabClaims:
		if m.claimsLoaded || m.claimsLoading {
			return m, nil
		}
		m.claimsLoading = true
		return m, tea.Batch(loadClaimsCmd(m.client, m.rng), m.spinner.Tick)
	case tabRisk:
		if m.riskLoaded || m.riskLoading {
			return m, nil
		}
		m.riskLoading = true
		return m, tea.Batch(loadRiskCmd(m.client, m.rng), m.spinner.Tick)
	case tabOps:
		if m.opsLoaded || m.opsLoading {
			return m, nil
		}
		m.opsLoading = true
		return m, tea.Batch(loadOpsCmd(m.client, m.rng), m.spinner.Tick)
	case tabC360:
		if m.c360Loaded || m.c360Loading {
			return m, nil
		}
		m.c360Loading = true
		return m, tea.Batch(loadC360Cmd(m.client, m.rng), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) invalidateAll() {
	m.overview = nil
	m.claimsLoaded = false
	m.riskLoaded = false
	m.opsLoaded = false
	m.c360Loaded = false
}

func (m *Model) invalidateTab(t tab) {
	switch t {
	case tabOverview:
		m.overview = nil
	case tabClaims:
		m.claimsLoaded = false
	case tabRisk:
		m.riskLoaded = false
	case tabOps:
		m.opsLoaded = false
	case tabC360:
		m.c360Loaded = false
	}
}

func (m Model) anythingLoading() bool {
	return m.overviewLoading || m.claimsLoading || m.riskLoading || m.opsLoading || m.c360Loading
}

func (m Model) uiState() storage.UIState {
	return storage.UIState{
		Theme:       m.th.name,
		DockWidth:   m.dock.Width(),
		DockVisible: m.dock.Visible(),
	}
}

func nextQuickRange(q quickRange) quickRange {
	if q == rangeYearToDate {
		return rangeAll
	}
	return q + 1
}

func (m *Model) resizePanels() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	dockCols := 0
	if m.dock.Visible() {
		dockCols = minInt(m.dock.Cells(), maxInt(20, m.width-minDashboardCols))
	}
	transcriptH := maxInt(6, m.height-9)
	m.transcript.Width = maxInt(20, dockCols-4)
	m.transcript.Height = transcriptH
	m.composer.Width = maxInt(16, dockCols-8)
	m.refreshTranscript()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampFloat(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
