package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"bmxshop/internal/api"
)

// OrdersPageModel renders the order history.
type OrdersPageModel struct {
	viewport viewport.Model
	styles   Styles
	orders   []api.Order
	offline  bool
	width    int
	height   int
}

// NewOrdersPageModel creates the orders page.
func NewOrdersPageModel(styles Styles) OrdersPageModel {
	return OrdersPageModel{
		viewport: viewport.New(80, 20),
		styles:   styles,
	}
}

// SetSize updates the size of the viewport.
func (m *OrdersPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - HeaderHeight - FooterHeight
	m.updateContent()
}

// UpdateContent replaces the order list. offline marks the local cache.
func (m *OrdersPageModel) UpdateContent(orders []api.Order, offline bool) {
	m.orders = orders
	m.offline = offline
	m.updateContent()
}

func (m *OrdersPageModel) updateContent() {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Orders"))
	if m.offline {
		sb.WriteString("  ")
		sb.WriteString(m.styles.Offline.Render("OFFLINE"))
	}
	sb.WriteString("\n")

	if len(m.orders) == 0 {
		sb.WriteString(m.styles.Muted.Render("No orders yet."))
		m.viewport.SetContent(sb.String())
		return
	}

	for _, o := range m.orders {
		sb.WriteString(m.styles.Bold.Render(fmt.Sprintf("Order %s", o.ID)))
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %s  %s", o.CreatedAt.Format("2006-01-02"), o.Status)))
		sb.WriteString("\n")

		table := NewSimpleTable("",
			Column{Name: "Product"},
			Column{Name: "Price", Numeric: true},
			Column{Name: "Qty", Numeric: true})
		for _, item := range o.Items {
			table.AddRow(truncate(item.ProductName, 30), item.Price.StringFixed(2), strconv.Itoa(item.Quantity))
		}
		sb.WriteString(table.View(m.styles))

		sb.WriteString(m.styles.Price.Render(fmt.Sprintf("Total: %s EUR", o.Total.StringFixed(2))))
		sb.WriteString("\n\n")
	}

	m.viewport.SetContent(sb.String())
}

// Update handles scrolling.
func (m OrdersPageModel) Update(msg tea.Msg) (OrdersPageModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the page.
func (m OrdersPageModel) View() string {
	footer := m.styles.Footer.Render("esc: back  q: quit")
	return m.viewport.View() + "\n" + footer
}
