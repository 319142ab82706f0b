package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/redvelvet/companion/internal/api"
	"github.com/redvelvet/companion/internal/app"
	"github.com/redvelvet/companion/internal/catalog"
	"github.com/redvelvet/companion/internal/chat"
	"github.com/redvelvet/companion/internal/config"
	"github.com/redvelvet/companion/internal/device"
	"github.com/redvelvet/companion/internal/logging"
)

var log = logging.Get()

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	diamondStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	userStyle    = lipgloss.NewStyle().Bold(true)
	companionSty = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Messages the renderer injects into the Bubble Tea loop.
type (
	statusMsg  string
	balanceMsg int
	chatLine   chat.Message
	typingMsg  bool
)

// teaRenderer forwards app notifications into the program's message loop.
// program must be set before app.Launch fires the first notification.
type teaRenderer struct {
	program *tea.Program
}

func (r *teaRenderer) StatusChanged(s string)         { r.program.Send(statusMsg(s)) }
func (r *teaRenderer) BalanceChanged(n int)           { r.program.Send(balanceMsg(n)) }
func (r *teaRenderer) MessageAppended(m chat.Message) { r.program.Send(chatLine(m)) }
func (r *teaRenderer) TypingShown()                   { r.program.Send(typingMsg(true)) }
func (r *teaRenderer) TypingHidden()                  { r.program.Send(typingMsg(false)) }

type model struct {
	app *app.App

	screen  app.Screen
	status  string
	balance int
	cursor  int

	companions []catalog.Companion
	history    []catalog.HistoryEntry
	settings   []catalog.SettingsItem
	packages   []catalog.DiamondPackage

	transcript []chat.Message
	typing     bool
	input      textinput.Model
	spin       spinner.Model
	width      int
}

func newModel(a *app.App) model {
	in := textinput.New()
	in.Placeholder = "Type a message"
	in.Prompt = "You> "
	in.CharLimit = 0
	in.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	var items []catalog.SettingsItem
	for _, sec := range catalog.Settings() {
		items = append(items, sec.Items...)
	}

	return model{
		app:        a,
		screen:     app.ScreenHome,
		companions: catalog.Companions(),
		history:    catalog.History(),
		settings:   items,
		packages:   catalog.Packages(),
		input:      in,
		spin:       s,
	}
}

func (m model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 6; w > 10 {
			m.input.Width = w
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case balanceMsg:
		m.balance = int(msg)
		return m, nil

	case chatLine:
		m.transcript = append(m.transcript, chat.Message(msg))
		return m, nil

	case typingMsg:
		m.typing = bool(msg)
		if m.typing {
			return m, m.spin.Tick
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.spin, cmd = m.spin.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.screen == app.ScreenChat {
		return m.handleChatKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.screen = nextScreen(m.screen)
		m.cursor = 0
		if m.screen == app.ScreenHome {
			m.app.ShowScreen(app.ScreenHome)
		}
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		return m.activate()
	}
	return m, nil
}

func (m model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.app.LeaveChat()
		m.screen = app.ScreenHome
		m.transcript = nil
		m.typing = false
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.app.SendMessage(text)
		m.input.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) listLen() int {
	switch m.screen {
	case app.ScreenHome:
		return len(m.companions)
	case app.ScreenChats:
		return len(m.history)
	case app.ScreenSettings:
		return len(m.settings)
	case app.ScreenPremium:
		return len(m.packages) + 1 // trailing subscription row
	}
	return 0
}

func (m model) activate() (tea.Model, tea.Cmd) {
	switch m.screen {
	case app.ScreenHome:
		c := m.companions[m.cursor]
		m.app.EnterChat(c.ID)
		m.screen = app.ScreenChat
		m.transcript = nil
		m.input.Focus()
		return m, m.spin.Tick
	case app.ScreenSettings:
		m.app.ActivateSetting(m.settings[m.cursor])
	case app.ScreenPremium:
		if m.cursor < len(m.packages) {
			m.app.PurchasePackage(m.packages[m.cursor])
		} else {
			m.app.Subscribe()
		}
	}
	return m, nil
}

func nextScreen(s app.Screen) app.Screen {
	switch s {
	case app.ScreenHome:
		return app.ScreenChats
	case app.ScreenChats:
		return app.ScreenSettings
	case app.ScreenSettings:
		return app.ScreenPremium
	default:
		return app.ScreenHome
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("💖 RedVelvet") + "  " +
		diamondStyle.Render(fmt.Sprintf("💎 %d", m.balance)) + "\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n")

	switch m.screen {
	case app.ScreenHome:
		b.WriteString(m.viewList("Companions", len(m.companions), func(i int) string {
			c := m.companions[i]
			return c.DisplayName + "\n    " + faintStyle.Render(c.Description)
		}))
	case app.ScreenChats:
		b.WriteString(m.viewList("Chats", len(m.history), func(i int) string {
			h := m.history[i]
			return h.Name + "  " + faintStyle.Render(h.Age) + "\n    " + h.LastMessage
		}))
	case app.ScreenSettings:
		b.WriteString(m.viewList("Settings", len(m.settings), func(i int) string {
			it := m.settings[i]
			return it.Title + "\n    " + faintStyle.Render(it.Description)
		}))
	case app.ScreenPremium:
		b.WriteString(m.viewList("Premium", len(m.packages)+1, func(i int) string {
			var p catalog.DiamondPackage
			if i < len(m.packages) {
				p = m.packages[i]
			} else {
				p = catalog.Subscription()
			}
			return p.Name + "  " + diamondStyle.Render(p.Price) + "\n    " +
				faintStyle.Render(p.Diamonds+" · "+p.Description)
		}))
	case app.ScreenChat:
		b.WriteString(m.viewChat())
	}

	if m.screen != app.ScreenChat {
		b.WriteString("\n" + faintStyle.Render("tab: next screen · enter: select · q: quit"))
	}
	return b.String()
}

func (m model) viewList(title string, n int, row func(int) string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	for i := 0; i < n; i++ {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		b.WriteString(marker + row(i) + "\n")
	}
	return b.String()
}

func (m model) viewChat() string {
	var b strings.Builder
	for _, msg := range m.transcript {
		if msg.FromUser {
			b.WriteString(userStyle.Render("You:") + " " + msg.Text + "\n\n")
		} else {
			b.WriteString(companionSty.Render("Companion:") + " " + msg.Text + "\n\n")
		}
	}
	if m.typing {
		b.WriteString(m.spin.View() + faintStyle.Render("typing...") + "\n\n")
	}
	b.WriteString(m.input.View() + "\n")
	b.WriteString(faintStyle.Render("esc: back"))
	return b.String()
}

func main() {
	// A .env next to the binary can override REDVELVET_* settings.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "redvelvet: %v\n", err)
		os.Exit(1)
	}

	fingerprint := device.Fingerprint()
	log.Info("Device fingerprint: %s", fingerprint)

	client := api.NewClient(cfg.ServerURL, cfg.UserAgent, cfg.Platform, fingerprint)
	renderer := &teaRenderer{}
	a := app.New(cfg, client, renderer)

	p := tea.NewProgram(newModel(a))
	renderer.program = p
	a.Launch()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "redvelvet: %v\n", err)
	}
	a.Shutdown()
	log.Close()
}
