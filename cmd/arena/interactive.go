package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/autoref/arena"
	"github.com/wippyai/autoref/ptr"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	handleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	arena  *arena.Arena
	owners map[arena.Handle][]*ptr.Ptr[arena.Block]
	input  textinput.Model
	status string
	err    error
}

func newInteractiveModel() *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "malloc 64"
	ti.Prompt = "> "
	ti.Width = 40
	ti.Focus()

	return &interactiveModel{
		arena:  arena.New(),
		owners: make(map[arena.Handle][]*ptr.Ptr[arena.Block]),
		input:  ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.releaseOwners()
			m.arena.Close()
			return m, tea.Quit

		case "enter":
			m.status, m.err = m.execute(strings.TrimSpace(m.input.Value()))
			m.input.SetValue("")
			if m.status == "quit" {
				m.releaseOwners()
				m.arena.Close()
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) execute(line string) (string, error) {
	if line == "" {
		return "", nil
	}
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "malloc":
		size, err := argInt(args, 0)
		if err != nil {
			return "", fmt.Errorf("usage: malloc <size>")
		}
		h, err := m.arena.Malloc(size)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("allocated handle %d (%d bytes)", h, size), nil

	case "calloc":
		count, err1 := argInt(args, 0)
		size, err2 := argInt(args, 1)
		if err1 != nil || err2 != nil {
			return "", fmt.Errorf("usage: calloc <count> <size>")
		}
		h, err := m.arena.Calloc(count, size)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("allocated handle %d (%d x %d bytes)", h, count, size), nil

	case "free":
		h, err := argHandle(args)
		if err != nil {
			return "", err
		}
		if err := m.arena.Free(h); err != nil {
			return "", err
		}
		return fmt.Sprintf("freed handle %d", h), nil

	case "retain":
		h, err := argHandle(args)
		if err != nil {
			return "", err
		}
		owner, err := m.arena.Retain(h)
		if err != nil {
			return "", err
		}
		m.owners[h] = append(m.owners[h], owner)
		return fmt.Sprintf("retained handle %d (%d owners here)", h, len(m.owners[h])), nil

	case "release":
		h, err := argHandle(args)
		if err != nil {
			return "", err
		}
		owned := m.owners[h]
		if len(owned) == 0 {
			return "", fmt.Errorf("no retained owner for handle %d", h)
		}
		owned[len(owned)-1].Release()
		m.owners[h] = owned[:len(owned)-1]
		return fmt.Sprintf("released one owner of handle %d", h), nil

	case "clear":
		m.releaseOwners()
		m.arena.Clear()
		return "arena cleared", nil

	case "q", "quit", "exit":
		return "quit", nil

	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
}

func (m *interactiveModel) releaseOwners() {
	for h, owned := range m.owners {
		for _, o := range owned {
			o.Release()
		}
		delete(m.owners, h)
	}
}

func argInt(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.Atoi(args[i])
}

func argHandle(args []string) (arena.Handle, error) {
	n, err := argInt(args, 0)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("usage: <command> <handle>")
	}
	return arena.Handle(n), nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Arena Inspector"))
	b.WriteString("\n\n")

	type row struct {
		h    arena.Handle
		size int
	}
	var rows []row
	m.arena.Each(func(h arena.Handle, size int) bool {
		rows = append(rows, row{h, size})
		return true
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].h < rows[j].h })

	if len(rows) == 0 {
		b.WriteString(helpStyle.Render("no live handles"))
		b.WriteString("\n")
	} else {
		for _, r := range rows {
			strong, weak, _ := m.arena.Stats(r.h)
			b.WriteString(handleStyle.Render(fmt.Sprintf("  handle %-4d", r.h)))
			b.WriteString(fmt.Sprintf(" %6d bytes  ", r.size))
			b.WriteString(countStyle.Render(fmt.Sprintf("strong=%d weak=%d", strong, weak)))
			if n := len(m.owners[r.h]); n > 0 {
				b.WriteString(countStyle.Render(fmt.Sprintf("  retained=%d", n)))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("malloc <n> • calloc <c> <n> • free <h> • retain <h> • release <h> • clear • quit"))
	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
