package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/tileboard/pkg/session"
	"gitlab.com/tinyland/lab/tileboard/pkg/theme"
)

// Form texts.
const (
	MsgPasswordMismatch = "Passwords do not match."
	MsgPasswordShort    = "Password must be at least 6 characters long."
	MsgRegistered       = "Registration successful! Please log in."

	minPasswordLen = 6
)

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

// authForm is the sign-in or sign-up form. Focus cycles through the
// inputs, the submit button, and the link to the other form.
type authForm struct {
	mode   authMode
	inputs []textinput.Model
	focus  int

	warn   string // local validation
	err    string // server rejection
	notice string // carried over from a successful sign-up
	busy   bool
}

func newAuthForm(mode authMode) authForm {
	labels := []string{"Email Address", "Password"}
	if mode == modeRegister {
		labels = append(labels, "Confirm Password")
	}
	f := authForm{mode: mode}
	for i, l := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = l
		in.CharLimit = 256
		in.Width = 32
		if i > 0 {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs = append(f.inputs, in)
	}
	f.inputs[0].Focus()
	return f
}

func (f *authForm) labels() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Placeholder
	}
	return out
}

func (f *authForm) title() string {
	if f.mode == modeRegister {
		return "Sign up"
	}
	return "Sign in"
}

func (f *authForm) button() string {
	switch {
	case f.mode == modeRegister && f.busy:
		return "Signing Up..."
	case f.mode == modeRegister:
		return "Sign Up"
	case f.busy:
		return "Signing In..."
	}
	return "Sign In"
}

func (f *authForm) link() string {
	if f.mode == modeRegister {
		return "Already have an account? Sign In"
	}
	return "Don't have an account? Sign Up"
}

func (f *authForm) buttonSlot() int { return len(f.inputs) }
func (f *authForm) linkSlot() int   { return len(f.inputs) + 1 }

func (f *authForm) setFocus(i int) tea.Cmd {
	n := len(f.inputs) + 2
	f.focus = (i%n + n) % n
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f *authForm) value(i int) string {
	if i >= len(f.inputs) {
		return ""
	}
	return f.inputs[i].Value()
}

// email and password are the first two field values, trimmed of the
// whitespace a paste tends to bring along.
func (f *authForm) email() string    { return strings.TrimSpace(f.value(0)) }
func (f *authForm) password() string { return f.value(1) }

// validate returns the first local problem with the form, or "".
func (f *authForm) validate() string {
	if f.mode != modeRegister {
		return ""
	}
	return CheckSignUp(f.value(1), f.value(2))
}

// CheckSignUp returns the warning for a sign-up password pair, or ""
// when the pair is acceptable. A mismatch is reported before length.
func CheckSignUp(password, confirm string) string {
	if password != confirm {
		return MsgPasswordMismatch
	}
	if len(password) < minPasswordLen {
		return MsgPasswordShort
	}
	return ""
}

// firstEmpty returns the index of the first empty input, or -1.
func (f *authForm) firstEmpty() int {
	for i := range f.inputs {
		if strings.TrimSpace(f.inputs[i].Value()) == "" {
			return i
		}
	}
	return -1
}

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formSwitch
)

// handleKey edits the form. It returns formSubmit once every field is
// filled and the form validates, and formSwitch when the link is chosen.
func (f *authForm) handleKey(msg tea.KeyMsg) (formAction, tea.Cmd) {
	if f.busy {
		return formNone, nil
	}
	switch msg.String() {
	case "tab", "down":
		return formNone, f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return formNone, f.setFocus(f.focus - 1)
	case "enter":
		switch {
		case f.focus == f.linkSlot():
			return formSwitch, nil
		case f.focus < len(f.inputs)-1:
			return formNone, f.setFocus(f.focus + 1)
		}
		return f.submit()
	}
	if f.focus >= len(f.inputs) {
		return formNone, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return formNone, cmd
}

func (f *authForm) submit() (formAction, tea.Cmd) {
	f.warn, f.err = "", ""
	if i := f.firstEmpty(); i >= 0 {
		return formNone, f.setFocus(i)
	}
	if w := f.validate(); w != "" {
		f.warn = w
		return formNone, nil
	}
	f.busy = true
	return formSubmit, nil
}

// fail records a rejected submission.
func (f *authForm) fail(err error) {
	f.busy = false
	var ae *session.AuthError
	if errors.As(err, &ae) {
		f.err = ae.Msg
		return
	}
	f.err = err.Error()
}

func (f *authForm) view(st theme.Styles, width, height int) string {
	var b strings.Builder
	b.WriteString(st.FormTitle.Render(f.title()))
	b.WriteString("\n\n")
	if f.notice != "" {
		b.WriteString(st.Notice.Render(f.notice) + "\n\n")
	}
	if f.warn != "" {
		b.WriteString(st.Pending.Render(f.warn) + "\n\n")
	}
	if f.err != "" {
		b.WriteString(st.FieldErr.Render(f.err) + "\n\n")
	}
	for i, l := range f.labels() {
		label := st.Label
		if i == f.focus {
			label = st.Title
		}
		b.WriteString(label.Render(l) + "\n")
		b.WriteString(f.inputs[i].View() + "\n\n")
	}

	btn := st.Button
	if f.focus == f.buttonSlot() {
		btn = st.ButtonActive
	}
	b.WriteString(btn.Render("[ "+f.button()+" ]") + "\n\n")

	link := st.Dim
	if f.focus == f.linkSlot() {
		link = st.Title
	}
	b.WriteString(link.Render(f.link()))

	box := st.Form.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
