package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/chasedut/chatter/internal/api"
	"github.com/chasedut/chatter/internal/app"
	"github.com/chasedut/chatter/internal/chat"
	"github.com/chasedut/chatter/internal/imageprep"
	"github.com/chasedut/chatter/internal/prefs"
	"github.com/chasedut/chatter/internal/tui/components/editor"
	"github.com/chasedut/chatter/internal/tui/components/logo"
	"github.com/chasedut/chatter/internal/tui/components/messages"
	"github.com/chasedut/chatter/internal/tui/components/prompt"
	"github.com/chasedut/chatter/internal/tui/components/sidebar"
	"github.com/chasedut/chatter/internal/tui/components/status"
	"github.com/chasedut/chatter/internal/tui/styles"
	"github.com/chasedut/chatter/internal/tui/util"
	"github.com/chasedut/chatter/internal/version"
)

const (
	minSidebarWindow = 60
	clearConfirmWait = 3 * time.Second
)

type focus int

const (
	focusEditor focus = iota
	focusSidebar
)

type (
	prefsUpdatedMsg  struct{ prefs prefs.Preferences }
	imageAttachedMsg struct {
		path  string
		image *imageprep.Image
	}
)

// appModel is the top level model: chat list on the left, conversation and
// input on the right, status bar at the bottom.
type appModel struct {
	wWidth, wHeight int
	keyMap          KeyMap

	app   *app.App
	sink  eventSink
	prefs prefs.Preferences

	sidebar  *sidebar.Model
	messages *messages.Model
	editor   *editor.Model
	status   *status.Model
	prompt   *prompt.Model

	focus  focus
	locked bool

	image       *imageprep.Image
	lastReply   string
	clearArmed  time.Time
	showSidebar bool
}

// New creates and initializes a new TUI application model.
func New(app *app.App) tea.Model {
	return NewWithSize(app, 80, 24)
}

// NewWithSize creates the TUI model with an initial terminal size.
func NewWithSize(app *app.App, width, height int) tea.Model {
	return newAppModel(app, width, height)
}

func newAppModel(app *app.App, width, height int) *appModel {
	keyMap := DefaultKeyMap()
	sb := sidebar.New(app.Sessions)
	keyMap.pageBindings = sb.KeyMap().ShortHelp()

	a := &appModel{
		keyMap:   keyMap,
		app:      app,
		sink:     eventSink{publish: app.Publish, deliver: app.Deliver},
		sidebar:  sb,
		messages: messages.New(),
		editor:   editor.New(),
		status:   status.New(keyMap),
	}
	a.messages.Empty = func(w, h int) string {
		return logo.Render(version.Version, w, h)
	}
	a.applyPrefs(app.Preferences())
	a.resize(width, height)
	return a
}

func (a *appModel) Init() tea.Cmd {
	return tea.Batch(
		a.editor.Init(),
		a.refreshSessions(),
	)
}

func (a *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		if a.prompt != nil {
			a.prompt.Update(msg)
		}
		return a, nil
	case tea.KeyPressMsg:
		return a, a.handleKey(msg)
	case spinner.TickMsg:
		_, cmd := a.editor.Update(msg)
		return a, cmd

	// Chat operation effects
	case lockMsg:
		a.locked = true
		return a, a.editor.Lock()
	case unlockMsg:
		a.locked = false
		a.setFocus(focusEditor)
		return a, a.editor.Unlock()
	case userEntryMsg:
		a.messages.AppendUser(msg.content)
	case assistantBeginMsg:
		a.messages.BeginAssistant(msg.search)
	case assistantUpdateMsg:
		a.messages.UpdateAssistant(msg.rendered)
	case errorEntryMsg:
		a.messages.AppendError(msg.text)
	case clearConversationMsg:
		a.messages.Clear()
		a.lastReply = ""
	case usageMsg:
		a.status.SetUsage(chat.Usage(msg))
	case activeChatMsg:
		a.sidebar.SetActive(msg.id)
	case clearInputMsg:
		a.editor.Reset()
	case hideImageMsg:
		a.setImage("", nil)
	case sessionsChangedMsg:
		a.sidebar.Refresh()
		a.sidebar.SetActive(a.app.Sessions.ActiveID())
	case replyMsg:
		a.lastReply = msg.Content

	// Chat list
	case sidebar.SelectChatMsg:
		if a.locked {
			return a, nil
		}
		return a, a.loadChat(msg.ID)
	case sidebar.DeleteChatMsg:
		if a.locked {
			return a, nil
		}
		id := msg.ID
		return a, a.run(func(ctx context.Context, sink chat.Sink) error {
			return a.app.Chat.DeleteChat(ctx, id, sink)
		})
	case sidebar.ClearChatsMsg:
		if a.locked {
			return a, nil
		}
		if time.Since(a.clearArmed) > clearConfirmWait {
			a.clearArmed = time.Now()
			return a, util.ReportWarn("Press D again to delete all chats")
		}
		a.clearArmed = time.Time{}
		return a, a.run(a.app.Chat.ClearChats)

	// Prompts
	case prompt.SubmitMsg:
		a.closePrompt()
		return a, tea.Batch(a.handlePromptSubmit(msg), a.editor.Focus())
	case prompt.CloseMsg:
		a.closePrompt()
		return a, a.editor.Focus()

	case prefsUpdatedMsg:
		a.applyPrefs(msg.prefs)
	case imageAttachedMsg:
		a.setImage(msg.path, msg.image)
		return a, util.ReportInfo(fmt.Sprintf("Attached %s (%dx%d)", msg.image.Filename, msg.image.Width, msg.image.Height))

	default:
		_, cmd := a.status.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *appModel) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if a.prompt != nil {
		_, cmd := a.prompt.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, a.keyMap.Quit):
		return tea.Quit
	case key.Matches(msg, a.keyMap.Help):
		a.status.ToggleFullHelp()
		a.resize(a.wWidth, a.wHeight)
		return nil
	case key.Matches(msg, a.keyMap.SwitchFocus):
		if a.focus == focusEditor && a.showSidebar {
			a.setFocus(focusSidebar)
			return nil
		}
		a.setFocus(focusEditor)
		return a.editor.Focus()
	case key.Matches(msg, a.keyMap.NewChat):
		if a.locked {
			return nil
		}
		a.lastReply = ""
		return a.run(func(ctx context.Context, sink chat.Sink) error {
			_, err := a.app.Chat.NewChat(ctx, sink)
			return err
		})
	case key.Matches(msg, a.keyMap.ToggleSearch):
		return a.updatePreference(prefs.KeyUseSearch, strconv.FormatBool(!a.prefs.UseSearch))
	case key.Matches(msg, a.keyMap.ToggleTheme):
		next := prefs.ThemeLight
		if a.prefs.Theme == prefs.ThemeLight {
			next = prefs.ThemeDark
		}
		return a.updatePreference(prefs.KeyTheme, next)
	case key.Matches(msg, a.keyMap.Model):
		return a.updatePreference(prefs.KeyModelType, cycle(prefs.ModelTypes, a.prefs.ModelType))
	case key.Matches(msg, a.keyMap.APIType):
		return a.updatePreference(prefs.KeyAPIType, cycle(prefs.APITypes, a.prefs.APIType))
	case key.Matches(msg, a.keyMap.APIKey):
		return a.openAPIKeyPrompt()
	case key.Matches(msg, a.keyMap.AttachImage):
		if a.locked {
			return nil
		}
		return a.openPrompt(prompt.New(prompt.ImagePromptID, "Attach image",
			prompt.WithPlaceholder("/path/to/image.png"),
			prompt.WithValue(a.editor.Image()),
		))
	case key.Matches(msg, a.keyMap.RemoveImage):
		a.setImage("", nil)
		return nil
	case key.Matches(msg, a.keyMap.CopyReply):
		return a.copyReply()
	}

	if a.focus == focusSidebar {
		_, cmd := a.sidebar.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, a.keyMap.Send):
		if a.locked {
			return nil
		}
		return a.send(a.editor.Value())
	case key.Matches(msg, a.keyMap.Search):
		if a.locked {
			return nil
		}
		return a.search(a.editor.Value())
	}
	if msg.String() == "pgup" || msg.String() == "pgdown" {
		_, cmd := a.messages.Update(msg)
		return cmd
	}
	_, cmd := a.editor.Update(msg)
	return cmd
}

// run executes a chat operation off the update loop. Its effects arrive
// through the sink.
func (a *appModel) run(op func(context.Context, chat.Sink) error) tea.Cmd {
	ctx := a.app.Context()
	sink := a.sink
	return func() tea.Msg {
		err := op(ctx, sink)
		if errors.Is(err, chat.ErrBusy) {
			return util.InfoMsg{Type: util.InfoTypeWarn, Msg: "Please wait for the current request to finish"}
		}
		return nil
	}
}

func (a *appModel) send(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" && a.image == nil {
		return nil
	}
	req := a.app.SendRequest(text)
	req.Image = a.image
	if req.APIKey == "" {
		return a.openAPIKeyPrompt()
	}
	return a.run(func(ctx context.Context, sink chat.Sink) error {
		reply, err := a.app.Chat.Send(ctx, req, sink)
		if err == nil {
			a.sink.publish(replyMsg(reply))
		}
		return err
	})
}

func (a *appModel) search(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return a.run(func(ctx context.Context, sink chat.Sink) error {
		_, err := a.app.Chat.Search(ctx, text, sink)
		return err
	})
}

func (a *appModel) loadChat(id api.ID) tea.Cmd {
	return a.run(func(ctx context.Context, sink chat.Sink) error {
		history, err := a.app.Chat.LoadChat(ctx, id, sink)
		if err != nil {
			return err
		}
		a.sink.publish(replyMsg{Content: lastAssistant(history)})
		return nil
	})
}

func lastAssistant(h api.ChatHistory) string {
	for i := len(h.Messages) - 1; i >= 0; i-- {
		switch h.Messages[i].Role {
		case chat.RoleAssistant, chat.RoleBot:
			return h.Messages[i].Content
		}
	}
	return ""
}

func (a *appModel) refreshSessions() tea.Cmd {
	ctx := a.app.Context()
	sink := a.sink
	return func() tea.Msg {
		if err := a.app.Chat.RefreshSessions(ctx, sink); err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: err.Error()}
		}
		return nil
	}
}

func (a *appModel) updatePreference(k, v string) tea.Cmd {
	ctx := a.app.Context()
	return func() tea.Msg {
		p, err := a.app.UpdatePreference(ctx, k, v)
		if err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: err.Error()}
		}
		return prefsUpdatedMsg{prefs: p}
	}
}

func (a *appModel) handlePromptSubmit(msg prompt.SubmitMsg) tea.Cmd {
	value := strings.TrimSpace(msg.Value)
	switch msg.ID {
	case prompt.APIKeyPromptID:
		return a.updatePreference(prefs.KeyAPIKey, value)
	case prompt.ImagePromptID:
		if value == "" {
			a.setImage("", nil)
			return nil
		}
		return func() tea.Msg {
			img, err := imageprep.PrepareFile(value)
			if err != nil {
				return util.InfoMsg{Type: util.InfoTypeError, Msg: err.Error()}
			}
			return imageAttachedMsg{path: value, image: img}
		}
	}
	return nil
}

func (a *appModel) copyReply() tea.Cmd {
	if a.lastReply == "" {
		return util.ReportWarn("Nothing to copy yet")
	}
	reply := a.lastReply
	return func() tea.Msg {
		if err := clipboard.WriteAll(reply); err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: fmt.Sprintf("Could not copy: %v", err)}
		}
		return util.InfoMsg{Type: util.InfoTypeInfo, Msg: "Copied reply to clipboard"}
	}
}

func (a *appModel) openAPIKeyPrompt() tea.Cmd {
	return a.openPrompt(prompt.New(prompt.APIKeyPromptID, "API key ("+a.prefs.APIType+")",
		prompt.WithPlaceholder(a.prefs.APIKeyInstructions()),
		prompt.WithHint("Leave empty to remove the stored key."),
	))
}

func (a *appModel) openPrompt(p *prompt.Model) tea.Cmd {
	a.prompt = p
	a.prompt.Update(tea.WindowSizeMsg{Width: a.wWidth, Height: a.wHeight})
	a.editor.Blur()
	return a.prompt.Init()
}

func (a *appModel) closePrompt() {
	a.prompt = nil
	a.setFocus(focusEditor)
}

func (a *appModel) setImage(path string, img *imageprep.Image) {
	a.image = img
	a.editor.SetImage(path)
}

func (a *appModel) setFocus(f focus) {
	a.focus = f
	if f == focusSidebar {
		a.sidebar.Focus()
		a.editor.Blur()
		return
	}
	a.sidebar.Blur()
}

func (a *appModel) applyPrefs(p prefs.Preferences) {
	a.prefs = p
	t := styles.SetTheme(p.Theme)
	a.messages.SetStyles(messages.Styles{
		User:      t.S().UserLabel,
		Assistant: t.S().AssistantLabel,
		Search:    t.S().SearchBadge,
		Error:     t.S().ErrorText,
	})
	a.editor.SetSearch(p.UseSearch)

	settings := []string{p.ModelType, p.APIType}
	if p.UseSearch {
		settings = append(settings, "search on")
	}
	if p.APIKey == "" {
		settings = append(settings, "no key")
	}
	a.status.SetSettings(strings.Join(settings, " · "))
}

func (a *appModel) resize(width, height int) {
	a.wWidth, a.wHeight = width, height

	a.showSidebar = width >= minSidebarWindow
	sidebarWidth := 0
	if a.showSidebar {
		sidebarWidth = min(36, max(24, width/4))
	} else if a.focus == focusSidebar {
		a.setFocus(focusEditor)
	}
	mainWidth := max(1, width-sidebarWidth)

	a.status.SetWidth(width)
	a.editor.SetWidth(mainWidth)
	bodyHeight := max(1, height-a.status.Height())
	a.sidebar.SetSize(sidebarWidth, bodyHeight)
	a.messages.SetSize(mainWidth-2, max(1, bodyHeight-a.editor.Height()))
	if err := a.app.Markdown.SetWidth(mainWidth - 4); err != nil {
		a.status.Update(util.InfoMsg{Type: util.InfoTypeError, Msg: err.Error()})
	}
}

func (a *appModel) View() tea.View {
	var view tea.View
	t := styles.CurrentTheme()
	view.BackgroundColor = t.BgBase

	if a.wWidth == 0 || a.wHeight == 0 {
		view.Layer = lipgloss.NewCanvas()
		return view
	}

	if a.wWidth < 25 || a.wHeight < 10 {
		view.Layer = lipgloss.NewCanvas(
			lipgloss.NewLayer(
				t.S().Base.Width(a.wWidth).Height(a.wHeight).
					Align(lipgloss.Center, lipgloss.Center).
					Render("Window too small!"),
			),
		)
		return view
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		t.S().Base.PaddingLeft(1).Render(a.messages.View()),
		a.editor.View(),
	)
	body := main
	if a.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, a.sidebar.View(), main)
	}
	appView := lipgloss.JoinVertical(lipgloss.Left, body, a.status.View())

	layers := []*lipgloss.Layer{
		lipgloss.NewLayer(appView),
	}
	if a.prompt != nil {
		row, col := a.prompt.Position()
		layers = append(layers, lipgloss.NewLayer(a.prompt.View()).X(col).Y(row))
	}
	view.Layer = lipgloss.NewCanvas(layers...)
	return view
}

func cycle(values []string, current string) string {
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}
