package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/logscope/internal/binder"
	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/output"
	"github.com/vburojevic/logscope/internal/upload"
	"github.com/vburojevic/logscope/internal/view"
	"go.uber.org/zap"
)

var highlightStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("230")).Bold(true)

// Tab is one screen of the dashboard
type Tab int

const (
	TabDashboard Tab = iota
	TabAnomalies
	TabMetrics
	TabReports
	TabUpload
)

var tabNames = []string{"Dashboard", "Anomalies", "Metrics", "Reports", "Upload"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return fmt.Sprintf("tab %d", int(t))
}

// Backend is everything the screens and the upload sequence call
type Backend interface {
	view.Source
	upload.Backend
}

// Config carries the settings the model needs from the CLI
type Config struct {
	BaseURL        string
	ReportSeverity string
	Binder         []binder.Option
	Logger         *zap.Logger
}

// screen is what every data tab exposes
type screen interface {
	Refresh(ctx context.Context)
	Subscribe(fn func(view.Change)) func()
	Close()
	Wait()
}

// Model represents the TUI state
type Model struct {
	ctx    context.Context
	cfg    Config
	events chan tea.Msg

	dashboard *view.Dashboard
	anomalies *view.Anomalies
	metrics   *view.Metrics
	reports   *view.Reports
	orch      *upload.Orchestrator
	unsubs    []func()

	active      Tab
	viewport    viewport.Model
	pathInput   textinput.Model
	searchInput textinput.Model
	searching   bool
	searchQuery string
	width       int
	height      int
	ready       bool

	notice   string
	progress string
	last     *upload.Result
}

// stateMsg carries one binder transition of a tab
type stateMsg struct {
	tab    Tab
	change view.Change
}

// progressMsg reports an upload step starting
type progressMsg upload.Step

// noticeMsg carries a user-visible notice
type noticeMsg string

// navigateMsg asks the model to switch screens
type navigateMsg upload.View

// uploadDoneMsg ends an upload attempt
type uploadDoneMsg struct {
	res upload.Result
	err error
}

// New creates the dashboard model. ctx bounds every backend request.
func New(ctx context.Context, backend Backend, cfg Config) Model {
	path := textinput.New()
	path.Placeholder = "/path/to/app.log"
	path.CharLimit = 512
	path.Width = 60

	search := textinput.New()
	search.Placeholder = "Search anomalies..."
	search.CharLimit = 100
	search.Width = 40

	events := make(chan tea.Msg, 16)
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}

	m := Model{
		ctx:         ctx,
		cfg:         cfg,
		events:      events,
		dashboard:   view.NewDashboard(backend, cfg.Binder...),
		anomalies:   view.NewAnomalies(backend, cfg.Binder...),
		metrics:     view.NewMetrics(backend, cfg.Binder...),
		reports:     view.NewReports(backend, cfg.ReportSeverity, nil, cfg.Binder...),
		pathInput:   path,
		searchInput: search,
	}
	// Screens render from binder snapshots, so a transition dropped on a full
	// queue is still drawn when the queued messages are handled.
	for tab := TabDashboard; tab < TabUpload; tab++ {
		m.unsubs = append(m.unsubs, m.screen(tab).Subscribe(func(c view.Change) {
			select {
			case events <- stateMsg{tab: tab, change: c}:
			default:
			}
		}))
	}
	m.orch = &upload.Orchestrator{
		Backend:   backend,
		Notifier:  upload.NotifierFunc(func(s string) { send(noticeMsg(s)) }),
		Navigator: upload.NavigatorFunc(func(v upload.View) { send(navigateMsg(v)) }),
		Progress:  func(s upload.Step) { send(progressMsg(s)) },
		Logger:    cfg.Logger,
	}
	return m
}

// Active returns the visible tab
func (m Model) Active() Tab {
	return m.active
}

// Notice returns the last notice shown in the status line
func (m Model) Notice() string {
	return m.notice
}

// Close stops state messages and discards in-flight fetches of every screen
func (m Model) Close() {
	for _, off := range m.unsubs {
		off()
	}
	for tab := TabDashboard; tab < TabUpload; tab++ {
		m.screen(tab).Close()
	}
}

// Wait blocks until background fetches of every screen have returned
func (m Model) Wait() {
	for tab := TabDashboard; tab < TabUpload; tab++ {
		m.screen(tab).Wait()
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(m.active),
		waitForEvent(m.events),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC:
			m.Close()
			return m, tea.Quit
		case m.searching:
			return m.updateSearch(msg)
		case m.active == TabUpload && m.pathInput.Focused():
			return m.updatePath(msg)
		}
		switch msg.String() {
		case "q":
			m.Close()
			return m, tea.Quit
		case "1", "2", "3", "4", "5":
			cmds = append(cmds, m.switchTo(Tab(msg.String()[0]-'1')))
		case "tab":
			cmds = append(cmds, m.switchTo((m.active+1)%Tab(len(tabNames))))
		case "r":
			m.notice = ""
			cmds = append(cmds, m.refresh(m.active))
		case "s":
			sel := m.reports.CycleSelection()
			m.notice = "Severity filter: " + sel
			m.updateViewport()
		case "/":
			if m.active == TabAnomalies || m.active == TabReports {
				m.searching = true
				m.searchInput.Focus()
				return m, textinput.Blink
			}
		case "esc":
			if m.searchQuery != "" {
				m.searchQuery = ""
				m.searchInput.SetValue("")
				m.updateViewport()
			}
		case "i", "enter":
			if m.active == TabUpload {
				m.pathInput.Focus()
				return m, textinput.Blink
			}
		case "g", "home":
			m.viewport.GotoTop()
		case "G", "end":
			m.viewport.GotoBottom()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		viewportHeight := max(m.height-headerHeight-footerHeight, 1)

		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.updateViewport()

	case stateMsg:
		if msg.tab == m.active {
			if msg.change.State == binder.Failed {
				m.notice = msg.change.Message
			}
			m.updateViewport()
		}
		cmds = append(cmds, waitForEvent(m.events))

	case progressMsg:
		m.progress = upload.Step(msg).String()
		m.updateViewport()
		cmds = append(cmds, waitForEvent(m.events))

	case noticeMsg:
		m.notice = string(msg)
		cmds = append(cmds, waitForEvent(m.events))

	case navigateMsg:
		if upload.View(msg) == upload.ViewMetrics {
			cmds = append(cmds, m.switchTo(TabMetrics))
		}
		cmds = append(cmds, waitForEvent(m.events))

	case uploadDoneMsg:
		m.progress = ""
		if msg.err == nil && !msg.res.Skipped {
			res := msg.res
			m.last = &res
			m.notice = fmt.Sprintf("Uploaded %d lines, %d anomalies, %d security findings",
				res.Ack.Saved, res.Detection.Count(), res.Security.Count())
			m.pathInput.SetValue("")
		}
		m.updateViewport()
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchQuery = ""
		m.updateViewport()
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.searchQuery = m.searchInput.Value()
		m.updateViewport()
	default:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

func (m Model) updatePath(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "esc":
		m.pathInput.Blur()
	case "enter":
		cmd = m.submit()
		m.updateViewport()
	default:
		m.pathInput, cmd = m.pathInput.Update(msg)
	}
	return m, cmd
}

// submit starts the upload sequence for the typed path. An empty path is a
// no-op; a running upload is never doubled.
func (m *Model) submit() tea.Cmd {
	path := strings.TrimSpace(m.pathInput.Value())
	if path == "" {
		return nil
	}
	if m.orch.Busy() {
		m.notice = upload.ErrBusy.Error()
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		m.notice = "Cannot read " + path + ": " + err.Error()
		return nil
	}
	if info.IsDir() {
		m.notice = path + " is a directory"
		return nil
	}

	file := domain.UploadedFile{Path: path, Name: filepath.Base(path), Size: info.Size()}
	m.notice = ""
	m.progress = upload.StepUpload.String()
	ctx, orch := m.ctx, m.orch
	return func() tea.Msg {
		res, err := orch.Submit(ctx, file)
		return uploadDoneMsg{res: res, err: err}
	}
}

// switchTo unmounts the current screen and mounts tab
func (m *Model) switchTo(tab Tab) tea.Cmd {
	if tab < TabDashboard || tab > TabUpload || tab == m.active {
		return nil
	}
	if sc := m.screen(m.active); sc != nil {
		sc.Close()
	}
	m.pathInput.Blur()
	m.searchQuery = ""
	m.active = tab
	m.viewport.GotoTop()
	m.updateViewport()
	if tab == TabUpload {
		m.pathInput.Focus()
		return textinput.Blink
	}
	return m.refresh(tab)
}

func (m Model) screen(tab Tab) screen {
	switch tab {
	case TabDashboard:
		return m.dashboard
	case TabAnomalies:
		return m.anomalies
	case TabMetrics:
		return m.metrics
	case TabReports:
		return m.reports
	default:
		return nil
	}
}

// refresh re-triggers the binders of tab; their transitions arrive as
// stateMsg
func (m Model) refresh(tab Tab) tea.Cmd {
	sc := m.screen(tab)
	if sc == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		sc.Refresh(ctx)
		return nil
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.renderHeader(), m.viewport.View(), m.renderFooter())
}

func (m *Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Background(lipgloss.Color("236")).
		Padding(0, 1).
		Width(m.width)

	title := "logscope"
	if m.cfg.BaseURL != "" {
		title += " @ " + m.cfg.BaseURL
	}
	if m.progress != "" {
		title += " [UPLOADING: " + m.progress + "]"
	}

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.active {
			tabs[i] = output.Styles.ActiveTab.Render(label)
		} else {
			tabs[i] = output.Styles.Tab.Render(label)
		}
	}

	return titleStyle.Render(title) + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderFooter() string {
	if m.searching {
		return m.searchInput.View()
	}

	var status string
	if m.notice != "" {
		status = output.Styles.StatusBar.Render(m.notice) + "\n"
	}

	help := "q:quit 1-5/tab:screens r:refresh s:severity /:search g/G:top/bottom"
	if m.active == TabUpload {
		help = "enter:upload esc:leave input i:edit path q:quit 1-5:screens"
	}
	return status + output.Styles.Help.Width(m.width).Render(help)
}

func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
}

// entryMatches applies the search query to a single anomaly
func entryMatches(a domain.Anomaly, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(a.MessageText()), query) ||
		strings.Contains(strings.ToLower(a.Type), query) ||
		strings.Contains(strings.ToLower(string(a.Severity)), query)
}

// highlight marks every case-insensitive occurrence of query in s. Offsets
// come from matching s itself, since lower-casing can change byte lengths.
func highlight(s, query string) string {
	if query == "" || s == "" {
		return s
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return s
	}
	return re.ReplaceAllStringFunc(s, func(match string) string {
		return highlightStyle.Render(match)
	})
}

// waitForEvent forwards one message sent from a background upload
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
