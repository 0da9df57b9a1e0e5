package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/npcforge/dialogue-engine/pkg/chat"
	"github.com/npcforge/dialogue-engine/pkg/game"
)

const PlaceHolderText = "Say something to the NPC..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Conversation state
	npc        NPC
	playerID   string
	gameCtx    game.Context
	history    []chat.Message
	turnCount  int
	lastTurn   *chat.TurnResponse
	lastAnswer string

	// NPC selection state
	showNPCModal bool
	npcs         []NPC
	selectedNPC  int

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type turnResponseMsg struct {
	response *chat.TurnResponse
	err      error
}

type sessionEndedMsg struct {
	err error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	driftStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, npcs []NPC) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		playerID:     cfg.PlayerID,
		gameCtx: game.Context{
			Location: "starting_village",
			Quest:    "tutorial_basics",
			HP:       game.IntPtr(100),
			MP:       game.IntPtr(20),
			Status:   "healthy",
		},
		npcs:         npcs,
		showNPCModal: true,
	}
}

func (m *ConsoleUI) writeInitialContent(chatWidth int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("DIALOGUE ENGINE") + "\n\n")
	content.WriteString(fmt.Sprintf("You are talking to %s.\n", m.npc.Name))
	if m.npc.Description != "" {
		content.WriteString(wordwrap.String(m.npc.Description, chatWidth-6) + "\n")
	}
	content.WriteString("\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 10))) + "\n\n")
	return content.String()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Player:\n")
	if m.playerID != "" {
		content.WriteString(m.playerID + "\n\n")
	} else {
		content.WriteString("(assigned on first turn)\n\n")
	}

	content.WriteString("NPC:\n")
	content.WriteString(m.npc.Name + "\n\n")

	content.WriteString("Context:\n")
	content.WriteString("• location: " + m.gameCtx.Location + "\n")
	content.WriteString("• quest: " + m.gameCtx.Quest + "\n")
	if m.gameCtx.HP != nil {
		content.WriteString(fmt.Sprintf("• hp: %d\n", *m.gameCtx.HP))
	}
	content.WriteString("• status: " + m.gameCtx.Status + "\n\n")

	content.WriteString("Turns:\n")
	content.WriteString(fmt.Sprintf("%d total\n\n", m.turnCount))

	if m.lastTurn != nil {
		content.WriteString("Last turn:\n")
		if m.lastTurn.ContextDrift {
			content.WriteString("• drift: " + driftStyle.Render("yes") + "\n")
		} else {
			content.WriteString("• drift: no\n")
		}
		if m.lastTurn.Emotion != nil {
			content.WriteString(fmt.Sprintf("• emotion: %s (%.2f)\n",
				m.lastTurn.Emotion.Detected, m.lastTurn.Emotion.Score))
			if m.lastTurn.Emotion.Changed {
				content.WriteString("• emotion changed\n")
			}
		}
		content.WriteString(fmt.Sprintf("• memories: %d recalled\n", len(m.lastTurn.Memories)))
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy reply\n")
	content.WriteString("• /goto <place>\n")
	content.WriteString("• /quest <name>\n")
	content.WriteString("• /hp <n>\n")
	content.WriteString("• /end: Reset session\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

// writeChatContent rebuilds the chat transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(m.writeInitialContent(m.chatViewport.Width))

	for _, msg := range m.history {
		switch msg.Role {
		case chat.RoleAssistant:
			prefix := npcStyle.Render(m.npc.Name + ": ")
			content.WriteString(prefix + wordwrap.String(msg.Content, chatWidth) + "\n\n")
		case chat.RoleUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showNPCModal {
		return nil
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showNPCModal {
		return m.updateNPCModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if m.lastAnswer != "" {
				_ = clipboard.WriteAll(m.lastAnswer)
			}
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			m.history = append(m.history, chat.Message{
				Role:    chat.RoleUser,
				Content: input,
			})
			m.writeChatContent()

			return m, tea.Batch(m.sendTurn(input), progressTick())
		}

	case turnResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
		} else {
			m.turnCount++
			m.lastTurn = msg.response
			m.lastAnswer = msg.response.Answer
			m.playerID = msg.response.PlayerID
			m.history = append(m.history, chat.Message{
				Role:    chat.RoleAssistant,
				Content: msg.response.Answer,
			})
			m.writeChatContent()
		}
		m.chatViewport.GotoBottom()
		m.metaViewport.SetContent(m.writeMetadata())
		return m, nil

	case sessionEndedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.history = nil
			m.lastTurn = nil
			m.lastAnswer = ""
			m.turnCount = 0
		}
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /goto <place> - Move to a new location
• /quest <name> - Switch active quest
• /hp <n> - Set hit points
• /end - Reset this session's memory of you
• /help - Show this help
• Ctrl+Y - Copy the last NPC reply
• Ctrl+C - Quit

Changing location or quest between messages shifts the
situation; the NPC will notice and recall past encounters.
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/goto":
		if arg != "" {
			m.gameCtx.Location = arg
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case "/quest":
		if arg != "" {
			m.gameCtx.Quest = arg
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case "/hp":
		if n, err := strconv.Atoi(arg); err == nil {
			m.gameCtx.HP = game.IntPtr(n)
			if n <= 25 {
				m.gameCtx.Status = "injured"
			} else {
				m.gameCtx.Status = "healthy"
			}
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case "/end":
		if m.playerID != "" {
			m.loading = true
			m.textarea.Reset()
			return m, m.endSession()
		}
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendTurn(message string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendTurn(m.client, m.config.APIBaseURL, chat.TurnRequest{
			PlayerID:       m.playerID,
			NPCName:        m.npc.Name,
			NPCDescription: m.npc.Description,
			Message:        message,
			Context:        m.gameCtx,
		})
		return turnResponseMsg{resp, err}
	}
}

func (m ConsoleUI) endSession() tea.Cmd {
	return func() tea.Msg {
		err := endSession(m.client, m.config.APIBaseURL, m.playerID, m.npc.Name)
		return sessionEndedMsg{err}
	}
}

func (m ConsoleUI) updateNPCModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedNPC > 0 {
				m.selectedNPC--
			}
		case tea.KeyDown:
			if m.selectedNPC < len(m.npcs)-1 {
				m.selectedNPC++
			}
		case tea.KeyEnter:
			if len(m.npcs) > 0 {
				m.npc = m.npcs[m.selectedNPC]
				m.showNPCModal = false
				if m.width > 0 && m.height > 0 {
					m.resize()
					m.writeChatContent()
					m.metaViewport.SetContent(m.writeMetadata())
					m.ready = true
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave Conversation?"))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("%s will remember you next time.", m.npc.Name))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderNPCModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Choose an NPC"))
	content.WriteString("\n\n")

	for i, npc := range m.npcs {
		if i == m.selectedNPC {
			content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", npc.Name)))
		} else {
			content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", npc.Name)))
		}
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showNPCModal {
		return m.renderNPCModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 10))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar draws the animated bar shown while a turn is in flight.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
