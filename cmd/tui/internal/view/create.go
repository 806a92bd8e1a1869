package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/apexpay/payouter/internal/invoice"
)

type createField int

const (
	fieldAmount createField = iota
	fieldCurrency
)

type CreateModel struct {
	CommonModel
	svc *invoice.Service
	typ invoice.Type

	amountInput   textinput.Model
	currencyInput textinput.Model
	focused       createField

	submitting bool
	status     string
}

type createDoneMsg struct {
	inv *invoice.Invoice
	err error
}

func NewCreateModel(svc *invoice.Service, typ invoice.Type) CreateModel {
	amount := textinput.New()
	amount.Placeholder = "100.00"
	amount.Width = 20
	amount.Focus()

	currency := textinput.New()
	currency.Placeholder = "USD"
	currency.Width = 10

	return CreateModel{
		svc:           svc,
		typ:           typ,
		amountInput:   amount,
		currencyInput: currency,
	}
}

func (m CreateModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case createDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Created %s invoice %s (%s)", msg.inv.Type, msg.inv.ID, msg.inv.Status)
		m.amountInput.SetValue("")
		m.currencyInput.SetValue("")

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "tab", "shift+tab":
			m.toggleFocus()
			return m, nil
		case "enter":
			if m.submitting {
				return m, nil
			}

			return m.submit()
		}
	}

	var cmd tea.Cmd

	switch m.focused {
	case fieldAmount:
		m.amountInput, cmd = m.amountInput.Update(msg)
	case fieldCurrency:
		m.currencyInput, cmd = m.currencyInput.Update(msg)
	}

	return m, cmd
}

func (m CreateModel) View() string {
	title := "Create pay-in invoice"
	if m.typ == invoice.TypePayout {
		title = "Create payout invoice"
	}

	body := fmt.Sprintf(
		"%s\n\nAmount:   %s\nCurrency: %s\n\nEnter: submit | Tab: next field | Esc: back",
		title,
		m.amountInput.View(),
		m.currencyInput.View(),
	)

	if m.submitting {
		body += "\n\nSubmitting..."
	} else if m.status != "" {
		body += "\n\n" + m.status
	}

	return lipgloss.NewStyle().Padding(2).Render(body)
}

func (m *CreateModel) toggleFocus() {
	if m.focused == fieldAmount {
		m.focused = fieldCurrency
		m.amountInput.Blur()
		m.currencyInput.Focus()

		return
	}

	m.focused = fieldAmount
	m.currencyInput.Blur()
	m.amountInput.Focus()
}

func (m CreateModel) submit() (tea.Model, tea.Cmd) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.amountInput.Value()), 64)
	if err != nil {
		m.status = "Amount must be a number"
		return m, nil
	}

	currency := strings.ToUpper(strings.TrimSpace(m.currencyInput.Value()))
	if currency == "" {
		m.status = "Currency is required"
		return m, nil
	}

	m.submitting = true
	m.status = ""

	return m, m.createCmd(amount, currency)
}

func (m CreateModel) createCmd(amount float64, currency string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SvcCtx()
		defer cancel()

		inv, err := m.svc.Create(ctx, m.typ, amount, currency)

		return createDoneMsg{inv: inv, err: err}
	}
}
