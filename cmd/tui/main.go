package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/apexpay/payouter/cmd/tui/internal/view"
	"github.com/apexpay/payouter/internal/config"
	"github.com/apexpay/payouter/internal/database"
	"github.com/apexpay/payouter/internal/invoice"
	"github.com/apexpay/payouter/internal/invoice/filestore"
	invoiceStore "github.com/apexpay/payouter/internal/invoice/store"
	"github.com/apexpay/payouter/internal/payouter"
)

type model struct {
	svc *invoice.Service

	currentView View

	listView         view.ListModel
	createPayInView  view.CreateModel
	createPayoutView view.CreateModel
}

type View int

const (
	ViewMenu         View = 0
	ViewList         View = 1
	ViewCreatePayIn  View = 2
	ViewCreatePayout View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var repo invoice.Repository

	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}

		repo = invoiceStore.New(db)
	case "file":
		repo = filestore.New(cfg.Store.Path)
	default:
		slog.Error("unknown store driver", "driver", cfg.Store.Driver)
		os.Exit(1)
	}

	client := payouter.New(payouter.Config{
		BaseURL:       cfg.Payouter.BaseURL,
		MerchantID:    cfg.Payouter.MerchantID,
		PaymentAPIKey: cfg.Payouter.PaymentAPIKey,
		PayoutAPIKey:  cfg.Payouter.PayoutAPIKey,
		CallbackURL:   cfg.Payouter.CallbackURL,
		SuccessURL:    cfg.Payouter.SuccessURL,
		ErrorURL:      cfg.Payouter.ErrorURL,
		PayoutCard:    cfg.Payouter.PayoutCard,
		TestMode:      cfg.Payouter.TestMode,
		Timeout:       cfg.Payouter.Timeout,
	})

	svc := invoice.NewService(repo, client)

	return model{
		svc:              svc,
		currentView:      ViewMenu,
		listView:         view.NewListModel(svc),
		createPayInView:  view.NewCreateModel(svc, invoice.TypePayIn),
		createPayoutView: view.NewCreateModel(svc, invoice.TypePayout),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.svc)

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewCreatePayIn
				m.createPayInView = view.NewCreateModel(m.svc, invoice.TypePayIn)

				return m, m.createPayInView.Init()
			case "3":
				m.currentView = ViewCreatePayout
				m.createPayoutView = view.NewCreateModel(m.svc, invoice.TypePayout)

				return m, m.createPayoutView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewCreatePayIn:
		var newModel tea.Model
		newModel, cmd = m.createPayInView.Update(msg)
		m.createPayInView = newModel.(view.CreateModel)
	case ViewCreatePayout:
		var newModel tea.Model
		newModel, cmd = m.createPayoutView.Update(msg)
		m.createPayoutView = newModel.(view.CreateModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Payouter TUI\n\n" +
				"1. List Invoices\n" +
				"2. Create Pay-In Invoice\n" +
				"3. Create Payout Invoice\n\n" +
				"q. Quit",
		)
	case ViewList:
		return m.listView.View()
	case ViewCreatePayIn:
		return m.createPayInView.View()
	case ViewCreatePayout:
		return m.createPayoutView.View()
	}

	return fmt.Sprintf("Unknown View %d", m.currentView)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
