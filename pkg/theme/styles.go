package theme

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are the lipgloss styles the views draw with.
type Styles struct {
	Theme Theme

	Border      lipgloss.Style // tile frame, unfocused
	BorderFocus lipgloss.Style
	Ghost       lipgloss.Style
	Title       lipgloss.Style
	Close       lipgloss.Style // the [x] delete zone
	Body        lipgloss.Style
	Dim         lipgloss.Style

	Banner  lipgloss.Style // error banner
	Notice  lipgloss.Style // informational note
	Pending lipgloss.Style

	Toolbar      lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style

	Form      lipgloss.Style
	FormTitle lipgloss.Style
	Label     lipgloss.Style
	FieldErr  lipgloss.Style

	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// NewStyles derives the view styles from t.
func NewStyles(t Theme) Styles {
	c := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }
	return Styles{
		Theme:       t,
		Border:      lipgloss.NewStyle().Foreground(c(t.Border)),
		BorderFocus: lipgloss.NewStyle().Foreground(c(t.BorderFocus)),
		Ghost:       lipgloss.NewStyle().Foreground(c(t.Ghost)),
		Title:       lipgloss.NewStyle().Foreground(c(t.Title)).Bold(true),
		Close:       lipgloss.NewStyle().Foreground(c(t.Error)),
		Body:        lipgloss.NewStyle().Foreground(c(t.Foreground)),
		Dim:         lipgloss.NewStyle().Foreground(c(t.Dim)),

		Banner:  lipgloss.NewStyle().Foreground(c(t.Background)).Background(c(t.Error)).Bold(true).Padding(0, 1),
		Notice:  lipgloss.NewStyle().Foreground(c(t.OK)),
		Pending: lipgloss.NewStyle().Foreground(c(t.Warn)),

		Toolbar:      lipgloss.NewStyle().Foreground(c(t.Foreground)),
		Button:       lipgloss.NewStyle().Foreground(c(t.Accent)).Padding(0, 1),
		ButtonActive: lipgloss.NewStyle().Foreground(c(t.Background)).Background(c(t.Accent)).Padding(0, 1),

		Form: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Accent)).
			Padding(1, 2),
		FormTitle: lipgloss.NewStyle().Foreground(c(t.Accent)).Bold(true),
		Label:     lipgloss.NewStyle().Foreground(c(t.Dim)),
		FieldErr:  lipgloss.NewStyle().Foreground(c(t.Error)),

		HelpKey:  lipgloss.NewStyle().Foreground(c(t.HelpKey)),
		HelpDesc: lipgloss.NewStyle().Foreground(c(t.HelpDesc)),
	}
}

// Profile returns the colour profile for the output, honouring NO_COLOR
// and a non-terminal stdout.
func Profile() termenv.Profile {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return termenv.Ascii
	}
	return termenv.NewOutput(os.Stdout).EnvColorProfile()
}

// Setup registers any custom theme file, applies the colour profile to
// lipgloss, and returns the styles for name.
func Setup(name string, profile termenv.Profile) (Styles, error) {
	lipgloss.SetColorProfile(profile)
	if IsFile(name) {
		t, err := LoadFile(name)
		if err != nil {
			return NewStyles(Get("default")), err
		}
		Register(t)
		name = t.Name
	}
	return NewStyles(Get(name)), nil
}
