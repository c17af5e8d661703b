package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openlightcontrol/arductl/internal/transport"
)

// ErrPickerCancelled is returned by PickPort when the user quits
var ErrPickerCancelled = errors.New("port selection cancelled")

// PortScanner lists candidate ports, usually transport.ListPorts
type PortScanner func() ([]transport.PortInfo, error)

type portsMsg struct {
	ports []transport.PortInfo
	err   error
}

// portItem adapts a PortInfo to bubbles/list
type portItem struct {
	port transport.PortInfo
}

func (i portItem) FilterValue() string { return i.port.Name + " " + i.port.Product }
func (i portItem) Title() string       { return i.port.Name }

func (i portItem) Description() string {
	if !i.port.IsUSB {
		return "not USB"
	}
	desc := "USB " + i.port.VID + ":" + i.port.PID
	if i.port.Product != "" {
		desc += " " + i.port.Product
	}
	return desc
}

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Choose, k.Rescan, k.Manual, k.Quit}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Choose},
		{k.Rescan, k.Manual, k.Quit},
	}
}

type manualKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func (k manualKeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Confirm, k.Cancel} }

func (k manualKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// PortPickerModel lets the user choose a serial port from a list or type
// one in
type PortPickerModel struct {
	scan PortScanner

	Scanning bool
	Manual   bool
	Err      error

	// Choice is the chosen port name, empty until the user picks one
	Choice    string
	Cancelled bool

	list       list.Model
	input      textinput.Model
	spinner    spinner.Model
	help       help.Model
	keys       pickerKeyMap
	manualKeys manualKeyMap
	width      int
}

// NewPortPickerModel creates a picker that fills itself from scan
func NewPortPickerModel(scan PortScanner) PortPickerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	input := textinput.New()
	input.Placeholder = "/dev/ttyACM0"
	input.CharLimit = 128
	input.Width = 40

	l := list.New(nil, list.NewDefaultDelegate(), MinTerminalWidth, 14)
	l.Title = "Serial Ports"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.Styles.Title = HeaderTitleStyle

	return PortPickerModel{
		scan:     scan,
		Scanning: true,
		list:     l,
		input:    input,
		spinner:  s,
		help:     help.New(),
		width:    MinTerminalWidth,
		keys: pickerKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "type a name")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		manualKeys: manualKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		},
	}
}

func (m PortPickerModel) scanCmd() tea.Msg {
	ports, err := m.scan()
	return portsMsg{ports: ports, err: err}
}

// Init implements tea.Model
func (m PortPickerModel) Init() tea.Cmd {
	return tea.Batch(m.scanCmd, m.spinner.Tick)
}

// Update implements tea.Model
func (m PortPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)
		m.list.SetSize(m.width-4, max(msg.Height-8, 6))
		return m, nil

	case portsMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.ports))
		for i, p := range msg.ports {
			items[i] = portItem{port: p}
		}
		cmd = m.list.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Manual {
			return m.updateManual(msg)
		}
		if msg.String() == "ctrl+c" || (m.list.FilterState() != list.Filtering && key.Matches(msg, m.keys.Quit)) {
			m.Cancelled = true
			return m, tea.Quit
		}
		if m.Scanning {
			return m, nil
		}
		if m.list.FilterState() != list.Filtering {
			switch {
			case key.Matches(msg, m.keys.Choose):
				if item, ok := m.list.SelectedItem().(portItem); ok {
					m.Choice = item.port.Name
					return m, tea.Quit
				}
				return m, nil
			case key.Matches(msg, m.keys.Rescan):
				m.Scanning = true
				m.Err = nil
				return m, tea.Batch(m.scanCmd, m.spinner.Tick)
			case key.Matches(msg, m.keys.Manual):
				m.Manual = true
				m.input.SetValue("")
				cmd = m.input.Focus()
				return m, cmd
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m PortPickerModel) updateManual(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		m.Cancelled = true
		return m, tea.Quit
	case key.Matches(msg, m.manualKeys.Cancel):
		m.Manual = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.manualKeys.Confirm):
		if name := strings.TrimSpace(m.input.Value()); name != "" {
			m.Choice = name
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m PortPickerModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Manual:
		b.WriteString(HeaderTitleStyle.Render("Serial port name"))
		b.WriteString("\n\n  ")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.manualKeys))

	case m.Scanning:
		fmt.Fprintf(&b, "  %s Looking for serial ports...\n\n", m.spinner.View())

	case m.Err != nil:
		b.WriteString(ErrorMessageStyle.Render(fmt.Sprintf("  %s Listing ports failed: %v", FailureMarker, m.Err)))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))

	case len(m.list.Items()) == 0:
		b.WriteString(WarningTitleStyle.Render("  " + WarningMarker + " No serial ports found"))
		b.WriteString("\n\n")
		b.WriteString(TroubleshootingItemStyle.Render("  Plug in the controller and press r, or press m to type a name"))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))

	default:
		b.WriteString(m.list.View())
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String() + "\n"
}

// PickPort runs the port picker on the terminal and returns the chosen name
func PickPort(scan PortScanner) (string, error) {
	if !IsTerminal() {
		return "", errors.New("port selection needs a terminal")
	}
	final, err := tea.NewProgram(NewPortPickerModel(scan)).Run()
	if err != nil {
		return "", err
	}
	m := final.(PortPickerModel)
	if m.Cancelled || m.Choice == "" {
		return "", ErrPickerCancelled
	}
	return m.Choice, nil
}
