package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/apexpay/payouter/internal/invoice"
)

type ListModel struct {
	CommonModel
	svc *invoice.Service

	table   table.Model
	invs    []*invoice.Invoice
	loading bool
	status  string
	err     error
}

type loadListMsg struct {
	invs []*invoice.Invoice
	err  error
}

type refreshStatusMsg struct {
	id       string
	external string
	err      error
}

func NewListModel(svc *invoice.Service) ListModel {
	columns := []table.Column{
		{Title: "ID", Width: 30},
		{Title: "Type", Width: 8},
		{Title: "Status", Width: 10},
		{Title: "Amount", Width: 14},
		{Title: "Created", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{svc: svc, table: t, loading: true}
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.invs = msg.invs
		m.refreshTable()

		return m, nil

	case refreshStatusMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Status refresh failed for %s: %v", msg.id, msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Processor reports %s for %s", msg.external, msg.id)

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.invs) {
				return m, m.refreshStatusCmd(m.invs[idx].ID)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) View() string {
	if m.loading {
		return "Loading invoices..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err))
	}

	help := "Esc: back | r: refresh | s: fetch processor status"
	if m.status != "" {
		help = m.status + "\n" + help
	}

	return lipgloss.NewStyle().Padding(1).Render(m.table.View() + "\n\n" + help)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, len(m.invs))
	for i, inv := range m.invs {
		rows[i] = table.Row{
			inv.ID,
			string(inv.Type),
			string(inv.Status),
			FormatAmount(inv.Amount, inv.Currency),
			inv.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	m.table.SetRows(rows)
}

func (m ListModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SvcCtx()
		defer cancel()

		invs, err := m.svc.List(ctx)

		return loadListMsg{invs: invs, err: err}
	}
}

func (m ListModel) refreshStatusCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SvcCtx()
		defer cancel()

		inv, external, err := m.svc.Status(ctx, id)
		if err != nil {
			return refreshStatusMsg{id: id, err: err}
		}

		status := string(inv.Status) + " (local)"
		if external != nil {
			status = external.Status()
		}

		return refreshStatusMsg{id: id, external: status}
	}
}
