package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginPageModel renders the sign-in form.
type LoginPageModel struct {
	styles   Styles
	email    textinput.Model
	password textinput.Model
	focus    int
	errMsg   string
	busy     bool
	width    int
	height   int
}

// NewLoginPageModel creates the sign-in page.
func NewLoginPageModel(styles Styles) LoginPageModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return LoginPageModel{
		styles:   styles,
		email:    email,
		password: password,
	}
}

// SetSize updates the page dimensions.
func (m *LoginPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Values returns the entered credentials.
func (m LoginPageModel) Values() (email, password string) {
	return strings.TrimSpace(m.email.Value()), m.password.Value()
}

// Ready reports whether both fields are filled in.
func (m LoginPageModel) Ready() bool {
	email, password := m.Values()
	return email != "" && password != ""
}

// SetError shows a failure under the form and re-enables input.
func (m *LoginPageModel) SetError(msg string) {
	m.errMsg = msg
	m.busy = false
}

// SetBusy disables input while a login attempt is in flight.
func (m *LoginPageModel) SetBusy() {
	m.errMsg = ""
	m.busy = true
}

// Reset clears the form.
func (m *LoginPageModel) Reset() {
	m.email.SetValue("")
	m.password.SetValue("")
	m.errMsg = ""
	m.busy = false
	m.focus = 0
	m.email.Focus()
	m.password.Blur()
}

// Update handles field focus and typing.
func (m LoginPageModel) Update(msg tea.Msg) (LoginPageModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "shift+tab", "up", "down":
			m.focus = 1 - m.focus
			if m.focus == 0 {
				m.email.Focus()
				m.password.Blur()
			} else {
				m.password.Focus()
				m.email.Blur()
			}
			return m, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the page.
func (m LoginPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Sign in"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Prompt.Render("Email:    "))
	sb.WriteString(m.email.View())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Prompt.Render("Password: "))
	sb.WriteString(m.password.View())
	sb.WriteString("\n\n")

	if m.busy {
		sb.WriteString(m.styles.Info.Render("Signing in..."))
		sb.WriteString("\n")
	}
	if m.errMsg != "" {
		sb.WriteString(m.styles.Error.Render(m.errMsg))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render("enter: sign in  tab: next field  esc: back"))
	return sb.String()
}
