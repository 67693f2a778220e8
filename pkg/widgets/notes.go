package widgets

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/app"
	"gitlab.com/tinyland/lab/tileboard/pkg/components"
	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
	"gitlab.com/tinyland/lab/tileboard/pkg/theme"
)

const notesPlaceholder = "Type your notes here..."

// Notes is a free-text note. Edits are saved once typing pauses for the
// debounce delay; only the final content of a burst is sent.
type Notes struct {
	id       string
	area     textarea.Model
	debounce *app.Debouncer
	styles   theme.Styles
	log      *zap.Logger

	markdown bool
	mdStyle  string
	preview  struct {
		width   int
		content string
		out     string
	}

	lastSaved string
	saving    bool
	saveErr   string
}

// NewNotes returns a notes widget seeded with content.
func NewNotes(id, content string, d Deps) *Notes {
	d = d.withDefaults()
	ta := textarea.New()
	ta.Placeholder = notesPlaceholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = ""
	ta.SetValue(content)
	return &Notes{
		id:        id,
		area:      ta,
		debounce:  app.NewDebouncer("notes:"+id, d.SaveDebounce),
		styles:    d.Styles,
		log:       d.Log,
		markdown:  d.Markdown,
		mdStyle:   d.MarkdownStyle,
		lastSaved: content,
	}
}

func (n *Notes) ID() string          { return n.id }
func (n *Notes) Title() string       { return "Notes" }
func (n *Notes) MinSize() (int, int) { return 16, 3 }
func (n *Notes) Init() tea.Cmd       { return nil }

// Close drops a pending save. Edits not yet saved are lost.
func (n *Notes) Close() { n.debounce.Cancel() }

// Content returns the buffer text.
func (n *Notes) Content() string { return n.area.Value() }

// Editing reports whether the text area has the cursor.
func (n *Notes) Editing() bool { return n.area.Focused() }

// SetFocused stops editing when the tile loses focus. A pending save
// still fires.
func (n *Notes) SetFocused(focused bool) tea.Cmd {
	if !focused {
		n.area.Blur()
	}
	return nil
}

// HandleKey starts editing on enter, leaves it on esc, and otherwise
// feeds the text area. Every change reschedules the save.
func (n *Notes) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if !n.area.Focused() {
		if msg.Type == tea.KeyEnter || msg.String() == "e" {
			return n.area.Focus()
		}
		return nil
	}
	if msg.Type == tea.KeyEsc {
		n.area.Blur()
		return nil
	}
	before := n.area.Value()
	var cmd tea.Cmd
	n.area, cmd = n.area.Update(msg)
	if n.area.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, n.debounce.Trigger())
}

// Update handles the debounce and save outcome for this widget, and
// drives the cursor blink while editing.
func (n *Notes) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case app.DebounceMsg:
		if !n.debounce.Fire(msg) {
			return nil
		}
		return n.save()
	case app.ConfigSavedMsg:
		if msg.WidgetID != n.id {
			return nil
		}
		n.saving = false
		if msg.Err != nil {
			n.saveErr = dashboard.Message(msg.Err)
			return nil
		}
		n.saveErr = ""
		n.lastSaved = msg.Config.Content()
		return nil
	}
	if !n.area.Focused() {
		return nil
	}
	var cmd tea.Cmd
	n.area, cmd = n.area.Update(msg)
	return cmd
}

func (n *Notes) save() tea.Cmd {
	content := n.area.Value()
	n.saving = true
	n.log.Debug("saving notes", zap.String("widget_id", n.id), zap.Int("bytes", len(content)))
	id := n.id
	return func() tea.Msg {
		return app.SaveConfigMsg{WidgetID: id, Partial: dashboard.Config{"content": content}}
	}
}

// SetConfig replaces the buffer with an externally changed content,
// unless the user is typing or a save is still pending.
func (n *Notes) SetConfig(cfg dashboard.Config) tea.Cmd {
	content := cfg.Content()
	if n.area.Focused() || n.debounce.Pending() || content == n.area.Value() {
		return nil
	}
	n.area.SetValue(content)
	n.lastSaved = content
	return nil
}

// View shows the editor while editing, else the markdown preview.
func (n *Notes) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	status := n.status()
	bodyH := height
	if status != "" && height > 1 {
		bodyH--
	}
	var body string
	if n.area.Focused() {
		n.area.SetWidth(width)
		n.area.SetHeight(bodyH)
		body = n.area.View()
	} else {
		body = n.render(width)
	}
	lines := components.Fit(components.Lines(body), width, bodyH)
	if status != "" && height > 1 {
		lines = append(lines, status)
	}
	return strings.Join(lines, "\n")
}

func (n *Notes) status() string {
	switch {
	case n.saveErr != "":
		return n.styles.FieldErr.Render(n.saveErr)
	case n.debounce.Pending() || n.saving:
		return n.styles.Pending.Render("saving…")
	}
	return ""
}

func (n *Notes) render(width int) string {
	content := n.area.Value()
	if strings.TrimSpace(content) == "" {
		return n.styles.Dim.Render(notesPlaceholder)
	}
	if !n.markdown {
		return strings.Join(components.Wrap(content, width), "\n")
	}
	if n.preview.width == width && n.preview.content == content {
		return n.preview.out
	}
	out, err := renderMarkdown(content, width, n.mdStyle)
	if err != nil {
		n.log.Debug("markdown render failed", zap.String("widget_id", n.id), zap.Error(err))
		out = strings.Join(components.Wrap(content, width), "\n")
	}
	n.preview.width, n.preview.content, n.preview.out = width, content, out
	return out
}

func renderMarkdown(md string, width int, style string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
