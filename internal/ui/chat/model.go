// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thinkly/internal/auth"
	"github.com/jeranaias/thinkly/internal/exchange"
	"github.com/jeranaias/thinkly/internal/export"
	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/session"
	"github.com/jeranaias/thinkly/internal/ui/components"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// =============================================================================
// VIEWS
// =============================================================================

// View identifies the screen being shown.
type View int

const (
	ViewLogin View = iota
	ViewChat
	ViewDashboard
)

// String returns the tab label.
func (v View) String() string {
	switch v {
	case ViewLogin:
		return "Login"
	case ViewChat:
		return "Chat"
	case ViewDashboard:
		return "Dashboard"
	default:
		return "Unknown"
	}
}

// Layout constants.
const (
	defaultWidth  = 80
	defaultHeight = 24
	inputHeight   = 3
	// header, status bar, thinking line and the input box border
	chromeHeight = 1 + 1 + 1 + inputHeight + 2
	noticeTTL    = 4 * time.Second
	inputLimit   = 8000
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Watcher reports keys changed in durable storage, including writes by other
// processes. storage.FileKV implements it.
type Watcher interface {
	Watch(ctx context.Context, fn func(key string)) error
}

// Deps are the collaborators the program drives.
type Deps struct {
	Session  *session.Store
	Exchange *exchange.Orchestrator
	// Gate guards the chat view. Nil, or a gate without credentials, skips login.
	Gate  *auth.Gate
	Theme *styles.Preference
	// Watcher is optional.
	Watcher Watcher
	// Export configures Ctrl+E. ExportFormat is md, json or html.
	Export       *export.Options
	ExportFormat string
	Logger       *slog.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the whole program.
type Model struct {
	deps   Deps
	ctx    context.Context
	logger *slog.Logger
	keys   KeyMap
	theme  *styles.Theme

	view   View
	width  int
	height int

	login    components.LoginForm
	input    textarea.Model
	viewport viewport.Model
	search   textinput.Model
	thinking components.Thinking

	// searching is true while the search box has focus; filter is the
	// query applied to the conversation.
	searching bool
	filter    string
	sending   bool

	notice    string
	noticeSeq int

	states  chan exchange.State
	changes chan string
	now     func() time.Time
}

// New creates the program model. It registers a state listener on
// deps.Exchange.
func New(deps Deps) Model {
	if deps.Export == nil {
		deps.Export = export.DefaultOptions()
	}
	if deps.ExportFormat == "" {
		deps.ExportFormat = export.Formats[0]
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = inputLimit
	ta.SetHeight(inputHeight)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	keys := DefaultKeyMap()
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "type to filter messages"
	search.CharLimit = 256

	m := Model{
		deps:     deps,
		ctx:      context.Background(),
		logger:   logging.OrDefault(deps.Logger).With("component", "tui"),
		keys:     keys,
		theme:    styles.NewTheme(deps.Theme.Dark()),
		view:     ViewChat,
		input:    ta,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		search:   search,
		thinking: components.NewThinking(),
		states:   make(chan exchange.State, 8),
		changes:  make(chan string, 8),
		now:      time.Now,
	}
	if m.loginRequired() {
		m.view = ViewLogin
		m.login = components.NewLoginForm(deps.Gate.RequiresCode())
	}

	states := m.states
	deps.Exchange.OnChange(func(s exchange.State) {
		select {
		case states <- s:
		default:
		}
	})

	m.resize(defaultWidth, defaultHeight)
	return m
}

// loginRequired reports whether the login view must be passed first.
func (m Model) loginRequired() bool {
	g := m.deps.Gate
	return g != nil && g.Configured() && !g.Authenticated()
}

// CurrentView returns the screen being shown.
func (m Model) CurrentView() View {
	return m.view
}

// Theme returns the active theme.
func (m Model) Theme() *styles.Theme {
	return m.theme
}

// notifyChange forwards a storage change to the program without blocking
// the watcher.
func (m Model) notifyChange(key string) {
	select {
	case m.changes <- key:
	default:
	}
}

// Init starts the cursor blink and the listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForState(m.states), waitForChange(m.changes)}
	if m.view == ViewLogin {
		cmds = append(cmds, m.login.Init())
	} else {
		cmds = append(cmds, textarea.Blink)
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// RUN
// =============================================================================

// Run shows the program until the user quits or ctx is canceled.
func Run(ctx context.Context, deps Deps) error {
	m := New(deps)
	m.ctx = ctx

	if deps.Watcher != nil {
		go func() {
			if err := deps.Watcher.Watch(ctx, m.notifyChange); err != nil && ctx.Err() == nil {
				m.logger.Warn("storage watch stopped", "error", err)
			}
		}()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
