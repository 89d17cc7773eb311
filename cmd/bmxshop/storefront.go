// This file implements the interactive storefront using bubbletea.
package main

import (
	"bmxshop/cmd/bmxshop/ui"
	"bmxshop/internal/api"
	"bmxshop/internal/catalog"
	"bmxshop/internal/localstore"
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// page identifies the active storefront screen
type page int

const (
	pageProducts page = iota
	pageDetail
	pageCart
	pageOrders
	pageLogin
)

// storefrontModel is the main model for the interactive storefront
type storefrontModel struct {
	app    *shopApp
	styles ui.Styles

	page     page
	products ui.ProductsPageModel
	detail   ui.DetailPageModel
	cart     ui.CartPageModel
	orders   ui.OrdersPageModel
	login    ui.LoginPageModel

	status  string
	width   int
	height  int
	ready   bool
	offline bool
}

// Messages

type catalogLoadedMsg struct {
	products []catalog.Product
	degraded bool
}

type detailLoadedMsg struct {
	product catalog.Product
	reviews []api.Review
}

type ordersLoadedMsg struct {
	orders  []api.Order
	offline bool
}

type loginResultMsg struct {
	name string
	err  error
}

func newStorefrontModel(app *shopApp) storefrontModel {
	styles := ui.NewStyles(ui.ThemeByName(app.cfg.UI.Theme))
	return storefrontModel{
		app:      app,
		styles:   styles,
		products: ui.NewProductsPageModel(styles),
		detail:   ui.NewDetailPageModel(styles),
		cart:     ui.NewCartPageModel(styles),
		orders:   ui.NewOrdersPageModel(styles),
		login:    ui.NewLoginPageModel(styles),
	}
}

func (m storefrontModel) Init() tea.Cmd {
	return m.loadCatalog()
}

// loadCatalog fetches products and warms the category list in parallel.
func (m storefrontModel) loadCatalog() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.API.Timeout)
		defer cancel()

		var products []catalog.Product
		var degraded bool
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			products, degraded = app.client.ProductsOrFallback(gctx)
			return nil
		})
		g.Go(func() error {
			// Warms the availability cache alongside the fetch; the
			// result itself is not needed here.
			app.client.Availability().Check(gctx)
			return nil
		})
		_ = g.Wait()

		return catalogLoadedMsg{products: products, degraded: degraded}
	}
}

func (m storefrontModel) loadDetail(p catalog.Product) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.API.Timeout)
		defer cancel()
		reviews := app.client.ReviewsForProduct(ctx, p.ID)
		return detailLoadedMsg{product: p, reviews: reviews}
	}
}

func (m storefrontModel) loadOrders() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.API.Timeout)
		defer cancel()

		orders, err := app.client.MyOrders(ctx)
		if err != nil {
			cached, cacheErr := app.history.Orders()
			if cacheErr != nil {
				return ordersLoadedMsg{offline: true}
			}
			return ordersLoadedMsg{orders: cached, offline: true}
		}
		_ = app.history.RecordAll(orders)
		return ordersLoadedMsg{orders: orders}
	}
}

func (m storefrontModel) doLogin(email, password string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.API.Timeout)
		defer cancel()

		sess, err := app.session.Login(ctx, email, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{name: sess.DisplayName()}
	}
}

func (m storefrontModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		content := ui.NewLayoutConfig(msg.Width, msg.Height)
		w, h := content.ContentWidth(), content.ContentHeight()
		m.products.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.cart.SetSize(w, h)
		m.orders.SetSize(w, h)
		m.login.SetSize(w, h)
		return m, nil

	case catalogLoadedMsg:
		m.offline = msg.degraded
		m.products.UpdateContent(msg.products, "", msg.degraded)
		return m, nil

	case detailLoadedMsg:
		m.detail.UpdateContent(msg.product, msg.reviews)
		m.page = pageDetail
		return m, nil

	case ordersLoadedMsg:
		m.orders.UpdateContent(msg.orders, msg.offline)
		m.page = pageOrders
		return m, nil

	case loginResultMsg:
		if msg.err != nil {
			m.login.SetError(loginFailureText(msg.err))
			return m, nil
		}
		m.status = "Signed in as " + msg.name
		m.page = pageProducts
		return m, m.loadCatalog()

	case stateChangedMsg:
		// Another bmxshop process rewrote local state; re-read it.
		switch string(msg) {
		case localstore.KeyCart:
			m.app.cart.Reload()
			if m.page == pageCart {
				m.cart.UpdateContent(m.app.cart.Entries(), m.app.cart.Total())
			}
		case localstore.KeyUser, localstore.KeyToken:
			m.app.session.Reload()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActivePage(msg)
}

func (m storefrontModel) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.page != pageLogin {
			return m, tea.Quit
		}
	case "esc":
		if m.page != pageProducts {
			m.page = pageProducts
			return m, nil
		}
	}

	switch m.page {
	case pageProducts:
		switch key.String() {
		case "enter":
			if p, ok := m.products.Selected(); ok {
				return m, m.loadDetail(p)
			}
		case "a":
			return m.addSelected()
		case "c":
			m.cart.UpdateContent(m.app.cart.Entries(), m.app.cart.Total())
			m.page = pageCart
			return m, nil
		case "o":
			if _, ok := m.app.session.Current(); !ok {
				m.page = pageLogin
				m.login.Reset()
				return m, nil
			}
			return m, m.loadOrders()
		case "l":
			if _, ok := m.app.session.Current(); ok {
				m.app.session.Logout()
				m.status = "Signed out."
				return m, nil
			}
			m.page = pageLogin
			m.login.Reset()
			return m, nil
		case "r":
			return m, m.loadCatalog()
		}

	case pageDetail:
		if key.String() == "a" {
			return m.addSelected()
		}

	case pageCart:
		switch key.String() {
		case "+":
			if e, ok := m.cart.Selected(); ok {
				m.app.cart.SetQuantity(e.ProductID, e.Quantity+1)
				m.cart.UpdateContent(m.app.cart.Entries(), m.app.cart.Total())
			}
			return m, nil
		case "-":
			if e, ok := m.cart.Selected(); ok {
				m.app.cart.SetQuantity(e.ProductID, e.Quantity-1)
				m.cart.UpdateContent(m.app.cart.Entries(), m.app.cart.Total())
			}
			return m, nil
		case "d":
			if e, ok := m.cart.Selected(); ok {
				m.app.cart.Remove(e.ProductID)
				m.cart.UpdateContent(m.app.cart.Entries(), m.app.cart.Total())
			}
			return m, nil
		case "x":
			// Card entry needs a line-oriented prompt, hand off to
			// the one-shot command.
			m.status = "Run 'bmxshop checkout' to place the order."
			return m, nil
		}

	case pageLogin:
		if key.String() == "enter" && m.login.Ready() {
			email, password := m.login.Values()
			m.login.SetBusy()
			return m, m.doLogin(email, password)
		}
	}

	return m.updateActivePage(key)
}

func (m storefrontModel) addSelected() (tea.Model, tea.Cmd) {
	p, ok := m.products.Selected()
	if !ok {
		return m, nil
	}
	if !p.InStock() {
		m.status = p.Name + " is out of stock."
		return m, nil
	}
	m.app.cart.Add(p, 1)
	m.status = fmt.Sprintf("Added %s. Cart: %s EUR", p.Name, m.app.cart.Total().StringFixed(2))
	return m, nil
}

func (m storefrontModel) updateActivePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case pageProducts:
		m.products, cmd = m.products.Update(msg)
	case pageDetail:
		m.detail, cmd = m.detail.Update(msg)
	case pageCart:
		m.cart, cmd = m.cart.Update(msg)
	case pageOrders:
		m.orders, cmd = m.orders.Update(msg)
	case pageLogin:
		m.login, cmd = m.login.Update(msg)
	}
	return m, cmd
}

func (m storefrontModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.styles.Header.Render(m.app.cfg.Payment.MerchantName)
	if m.offline {
		header += "  " + m.styles.Offline.Render("OFFLINE")
	}

	var body string
	switch m.page {
	case pageProducts:
		body = m.products.View()
	case pageDetail:
		body = m.detail.View()
	case pageCart:
		body = m.cart.View()
	case pageOrders:
		body = m.orders.View()
	case pageLogin:
		body = m.login.View()
	}

	status := m.statusLine()
	return header + "\n\n" + m.styles.Content.Render(body) + "\n" + status
}

func (m storefrontModel) statusLine() string {
	who := "anonymous"
	if sess, ok := m.app.session.Current(); ok {
		who = sess.Email
	}
	line := fmt.Sprintf("%s  ·  cart %d  ·  %s", who, m.app.cart.Units(), m.status)
	return m.styles.Footer.Render(line)
}

func loginFailureText(err error) string {
	switch {
	case errors.Is(err, api.ErrServerUnavailable):
		return "Shop backend is unreachable, try again later."
	case api.IsAuthFailure(err):
		return "Email or password incorrect."
	default:
		return err.Error()
	}
}

// stateChangedMsg reports a store key rewritten by another process.
type stateChangedMsg string

// runStorefront wires the app and runs the bubbletea program.
func runStorefront() error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	program := tea.NewProgram(newStorefrontModel(app), tea.WithAltScreen())

	if app.cfg.Storage.WatchExternal {
		watcher, err := app.storage.Watch()
		if err != nil {
			app.logger.Warn("state watcher unavailable", zap.Error(err))
		} else {
			defer watcher.Close()
			go func() {
				for key := range watcher.Events {
					program.Send(stateChangedMsg(key))
				}
			}()
		}
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("storefront failed: %w", err)
	}
	return nil
}
