package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abennett/roll/pkg"
	"github.com/abennett/roll/pkg/client"
	"github.com/abennett/roll/pkg/messages"
)

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	Align(lipgloss.Center)

// droppedStyle marks dice a selector excluded from the subtotal.
var droppedStyle = lipgloss.NewStyle().
	Faint(true).
	Strikethrough(true)

var columns = []table.Column{
	{Title: "User", Width: 10},
	{Title: "Roll", Width: 30},
	{Title: "Total", Width: 6},
	{Title: "Done", Width: 6},
}

type app struct {
	client *client.Client
	table  table.Model
}

func newApp(c *client.Client) (*app, error) {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(0),
		table.WithFocused(false),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Foreground(lipgloss.Color("#01c5d1"))
	s.Selected = s.Selected.Foreground(lipgloss.NoColor{}).Bold(false)
	t.SetStyles(s)
	return &app{
		client: c,
		table:  t,
	}, nil
}

func (a *app) Init() tea.Cmd {
	err := a.client.Init()
	if err != nil {
		panic(err)
	}
	return func() tea.Msg {
		return a.client.ReadUpdate()
	}
}

func renderTerm(tr pkg.TermResult) string {
	switch tr.Kind {
	case pkg.ModifierResult:
		return fmt.Sprintf("%+d", tr.Subtotal)
	case pkg.AdvantageResult:
		return fmt.Sprintf("%s (%d %d)=%d",
			droppedStyle.Render(strconv.Itoa(tr.Base)),
			tr.Pair[0], tr.Pair[1], tr.Subtotal)
	default:
		used := make(map[int]bool, len(tr.Used))
		for _, idx := range tr.Used {
			used[idx] = true
		}
		dies := make([]string, len(tr.Rolls))
		for idx, value := range tr.Rolls {
			if used[idx] {
				dies[idx] = strconv.Itoa(value)
			} else {
				dies[idx] = droppedStyle.Render(strconv.Itoa(value))
			}
		}
		return "[" + strings.Join(dies, " ") + "]"
	}
}

func renderResult(result pkg.Result) string {
	parts := make([]string, len(result.Terms))
	for i, term := range result.Terms {
		parts[i] = renderTerm(term)
	}
	return strings.Join(parts, " ")
}

func resultsToRows(rrs []messages.RollResult) []table.Row {
	rows := make([]table.Row, len(rrs))
	for idx, rr := range rrs {
		done := ""
		if rr.IsDone {
			done = "✅"
		}
		rows[idx] = table.Row{
			rr.User,
			renderResult(rr.Roll),
			strconv.Itoa(rr.Roll.Total),
			done,
		}
	}
	return rows
}

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case []messages.RollResult:
		slog.Debug("roll result")
		a.table.SetHeight(len(msg) + 1)
		a.table.SetRows(resultsToRows(msg))
		for _, rr := range msg {
			if !rr.IsDone {
				return a, func() tea.Msg {
					return a.client.ReadUpdate()
				}
			}
		}
		return a, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			err := a.client.Close()
			if err != nil {
				slog.Error("failed to close client", "error", err)
			}
			return a, tea.Quit

		// Attempt to toggle this user's done flag
		case " ":
			err := a.client.ToggleDone()
			if err != nil {
				panic(err)
			}
		}
	case error:
		slog.Error("exiting for error", "error", msg)
		return a, tea.Quit
	default:
		slog.Debug("unsupported message", "msg", msg)
	}
	slog.Debug("no update")
	return a, nil
}

func (a *app) View() string {
	slog.Debug("rerendering view")
	return baseStyle.Render(a.table.View()) + "\n"
}

func rollRemote(_ context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("host, room, and user arguments are required")
	}
	c, err := client.New(args[0], args[1], args[2], io.Discard)
	if err != nil {
		return err
	}
	app, err := newApp(c)
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(app).Run()
	return err
}
