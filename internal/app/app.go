package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/client"
	"github.com/nhle/teamboard/internal/keys"
	"github.com/nhle/teamboard/internal/ui"
	"github.com/nhle/teamboard/internal/ui/chat"
	"github.com/nhle/teamboard/internal/ui/command"
	helpview "github.com/nhle/teamboard/internal/ui/help"
	"github.com/nhle/teamboard/internal/ui/projectdetail"
	"github.com/nhle/teamboard/internal/ui/projectform"
	"github.com/nhle/teamboard/internal/ui/projectlist"
	"github.com/nhle/teamboard/internal/ui/taskform"
	"github.com/nhle/teamboard/internal/ui/team"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewProjectForm
	ViewTaskForm
	ViewChat
	ViewTeam
	ViewHelp
	ViewCommand
)

// Config wires the root model to its collaborators.
type Config struct {
	Board *board.Board

	// Token is the stored bearer credential; empty means guest mode.
	Token string

	// Syncer pushes the profile to the gateway. Nil skips the call.
	Syncer *client.SessionSyncer

	Now    func() time.Time
	Logger *slog.Logger
}

// sessionMsg reports the outcome of the startup session sync.
type sessionMsg struct {
	session client.Session
	called  bool
	err     error
}

// Model is the root Bubble Tea model that manages view routing and layout.
type Model struct {
	currentView  ViewState
	previousView ViewState
	frame        ui.Frame
	cfg          Config
	keys         *keys.KeyMap
	projectList  projectlist.Model
	detail       projectdetail.Model
	projectForm  projectform.Model
	taskForm     taskform.Model
	chatView     chat.Model
	teamView     team.Model
	helpView     helpview.Model
	commandView  command.Model
	session      *client.Session
	sessionState string
	statusMsg    string
	statusFailed bool
	ready        bool
}

// New creates a new root application model.
func New(cfg Config) Model {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	k := keys.DefaultKeyMap()
	b := cfg.Board

	return Model{
		currentView:  ViewList,
		cfg:          cfg,
		keys:         k,
		projectList:  projectlist.New(b, k, cfg.Now, 80, 24),
		detail:       projectdetail.New(b, k, 80, 24),
		projectForm:  projectform.New(b, 80, 24),
		taskForm:     taskform.New(b, 80, 24),
		chatView:     chat.New(b, 80, 24),
		teamView:     team.New(b, k, 80, 24),
		helpView:     helpview.New(k, command.Names, 80, 24),
		commandView:  command.New(80, 24),
		sessionState: "guest",
	}
}

// Init loads the project list and starts the session sync.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.projectList.Init(), m.syncSession())
}

// syncSession derives the signed-in user from the stored credential and
// pushes it to the gateway once.
func (m Model) syncSession() tea.Cmd {
	token := m.cfg.Token
	if token == "" {
		return nil
	}
	syncer := m.cfg.Syncer
	return func() tea.Msg {
		if syncer == nil {
			sess, err := client.NewSession(token)
			return sessionMsg{session: sess, err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sess, called, err := syncer.Sync(ctx, token)
		return sessionMsg{session: sess, called: called, err: err}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.frame = ui.NewFrame(msg.Width, msg.Height)
		m.ready = true
		w, h := m.frame.Width, m.frame.ContentHeight()
		m.projectList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.projectForm.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.chatView.SetSize(w, h)
		m.teamView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case sessionMsg:
		m.applySession(msg)
		return m, nil

	case projectlist.SelectedProjectMsg:
		if m.detail.Open(msg.ProjectID) {
			m.previousView = m.currentView
			m.currentView = ViewDetail
		}
		return m, nil

	case projectdetail.BackMsg:
		m.currentView = ViewList
		return m, m.projectList.LoadProjects()

	case projectdetail.ChangedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, tea.Batch(cmd, m.projectList.LoadProjects())

	case projectdetail.ProjectDeletedMsg:
		m.currentView = ViewList
		m.notify(msg.Err, "Project deleted")
		return m, m.projectList.LoadProjects()

	case projectdetail.NewTaskMsg:
		p, err := m.cfg.Board.Project(msg.ProjectID)
		if err != nil {
			return m, nil
		}
		m.currentView = ViewTaskForm
		return m, m.taskForm.Start(p)

	case projectdetail.OpenChatMsg:
		m.previousView = ViewDetail
		m.currentView = ViewChat
		return m, m.chatView.Open(msg.ProjectID)

	case taskform.TaskAddedMsg:
		m.currentView = ViewDetail
		m.detail.Open(msg.ProjectID)
		m.notify(msg.Err, "Task added")
		return m, m.projectList.LoadProjects()

	case taskform.CancelMsg:
		m.currentView = ViewDetail
		return m, nil

	case projectform.ProjectCreatedMsg:
		m.currentView = ViewList
		m.notify(msg.Err, fmt.Sprintf("Created %q", msg.Project.Name))
		return m, m.projectList.LoadProjects()

	case projectform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case chat.SentMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd

	case chat.BackMsg:
		if m.previousView == ViewDetail && m.detail.ProjectID() != 0 {
			m.detail.Open(m.detail.ProjectID())
			m.currentView = ViewDetail
			return m, nil
		}
		m.currentView = ViewList
		return m, m.projectList.LoadProjects()

	case team.BackMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that act regardless of the active view.
// Views with text input focus receive everything except ctrl+c.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	if m.inputFocused() {
		return nil, false
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewList {
			return tea.Quit, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case ":":
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true

	case "esc":
		if m.currentView == ViewHelp || m.currentView == ViewCommand {
			m.currentView = m.previousView
			return nil, true
		}
	}

	if m.currentView != ViewList {
		return nil, false
	}
	switch msg.String() {
	case "n":
		return m.openProjectForm(), true
	case "m":
		return m.openTeam(), true
	case "r":
		m.notify(nil, "")
		return m.projectList.LoadProjects(), true
	}
	return nil, false
}

// inputFocused reports whether the active view owns the keyboard.
func (m Model) inputFocused() bool {
	switch m.currentView {
	case ViewProjectForm, ViewTaskForm, ViewChat, ViewCommand:
		return true
	case ViewList:
		return m.projectList.Searching()
	case ViewDetail:
		return m.detail.Editing()
	}
	return false
}

func (m *Model) openProjectForm() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewProjectForm
	return m.projectForm.Start()
}

func (m *Model) openTeam() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewTeam
	m.teamView.Refresh()
	return nil
}

func (m *Model) applySession(msg sessionMsg) {
	switch {
	case msg.session.Subject == "":
		m.sessionState = "guest"
		if msg.err != nil {
			m.cfg.Logger.Warn("stored credential unreadable", "error", msg.err)
			m.sessionState = "invalid credential"
		}
		return
	case msg.err != nil:
		m.sessionState = "sync failed"
	case msg.called:
		m.sessionState = "synced"
	default:
		m.sessionState = "signed in"
	}
	sess := msg.session
	m.session = &sess
	m.chatView.SetSender(chat.Sender{ID: sess.Subject, Name: sess.Name, Avatar: sess.Avatar})
	m.helpView.SetSession(sess.Name)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.projectList, cmd = m.projectList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewProjectForm:
		m.projectForm, cmd = m.projectForm.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case ViewTeam:
		m.teamView, cmd = m.teamView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.frame.RenderHeader(m.header())
	status := m.frame.RenderStatus(m.statusLine())
	return m.frame.Render(header, m.renderContent(), status)
}

// header summarizes the board and the session for the top bar.
func (m Model) header() ui.Header {
	stats := m.cfg.Board.Stats(m.cfg.Now())
	return ui.Header{
		Section:   m.sectionName(),
		Active:    stats.Total - stats.Completed,
		Completed: stats.Completed,
		Upcoming:  stats.UpcomingDeadlines,
		Session:   m.sessionStatus(),
	}
}

// sectionName labels the active view in the header.
func (m Model) sectionName() string {
	switch m.currentView {
	case ViewDetail:
		if p, err := m.cfg.Board.Project(m.detail.ProjectID()); err == nil {
			return p.Name
		}
		return "Project"
	case ViewProjectForm:
		return "New project"
	case ViewTaskForm:
		return "New task"
	case ViewChat:
		return "Chat"
	case ViewTeam:
		return "Team"
	case ViewHelp:
		return "Help"
	case ViewCommand:
		return "Command"
	default:
		if m.projectList.ShowingCompleted() {
			return "Completed"
		}
		return "Projects"
	}
}

// statusLine pairs the key hints with the outcome of the last action.
func (m Model) statusLine() ui.Status {
	return ui.Status{
		Hints:  m.keyHints(),
		Notice: m.statusMsg,
		Failed: m.statusFailed,
	}
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.projectList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewProjectForm:
		return m.projectForm.View()
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewChat:
		return m.chatView.View()
	case ViewTeam:
		return m.teamView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// sessionStatus returns the header's right-hand label.
func (m Model) sessionStatus() string {
	if m.session == nil {
		return m.sessionState
	}
	return fmt.Sprintf("%s · %s", m.session.Name, m.sessionState)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | space toggle | t task | s subtask | c chat | x complete | d delete"
	case ViewProjectForm, ViewTaskForm:
		return "enter submit | esc cancel"
	case ViewChat:
		return "enter send | tab search projects | esc back"
	case ViewTeam:
		return "j/k move | esc back"
	default:
		return "q quit | ? help | n new | / search | tab active/completed | m team | : command"
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "new", "new project":
		return m.openProjectForm()
	case "team":
		return m.openTeam()
	case "active":
		m.currentView = ViewList
		return m.projectList.SetShowCompleted(false)
	case "completed":
		m.currentView = ViewList
		return m.projectList.SetShowCompleted(true)
	case "reload", "refresh":
		return m.projectList.LoadProjects()
	case "sync":
		return m.syncSession()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case "quit", "q":
		return tea.Quit
	default:
		m.notify(fmt.Errorf("unknown command %q", cmd), "")
		return nil
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// notify records the outcome of the last action for the status bar.
func (m *Model) notify(err error, ok string) {
	m.statusFailed = err != nil
	if err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
		return
	}
	m.statusMsg = ok
}
