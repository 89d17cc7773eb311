package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"bmxshop/internal/cart"

	"github.com/shopspring/decimal"
)

// CartPageModel renders the cart with line selection for editing.
type CartPageModel struct {
	styles  Styles
	entries []cart.Entry
	total   decimal.Decimal
	cursor  int
	width   int
	height  int
}

// NewCartPageModel creates the cart page.
func NewCartPageModel(styles Styles) CartPageModel {
	return CartPageModel{styles: styles}
}

// SetSize updates the page dimensions.
func (m *CartPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateContent replaces the cart lines shown.
func (m *CartPageModel) UpdateContent(entries []cart.Entry, total decimal.Decimal) {
	m.entries = entries
	m.total = total
	if m.cursor >= len(entries) {
		m.cursor = len(entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Selected returns the cart line under the cursor.
func (m CartPageModel) Selected() (cart.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return cart.Entry{}, false
	}
	return m.entries[m.cursor], true
}

// Update handles navigation keys.
func (m CartPageModel) Update(msg tea.Msg) (CartPageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// View renders the page.
func (m CartPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Cart"))
	sb.WriteString("\n")

	if len(m.entries) == 0 {
		sb.WriteString(m.styles.Muted.Render("Cart is empty."))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Footer.Render("esc: back  q: quit"))
		return sb.String()
	}

	table := NewSimpleTable("",
		Column{Name: "Product"},
		Column{Name: "Price", Numeric: true},
		Column{Name: "Qty", Numeric: true},
		Column{Name: "Subtotal", Numeric: true})
	for _, e := range m.entries {
		table.AddRow(truncate(e.Name, 30), e.Price.StringFixed(2), strconv.Itoa(e.Quantity), e.Subtotal().StringFixed(2))
	}
	rendered := table.View(m.styles)

	// Mark the selected row; the table body starts after header + rule.
	lines := strings.Split(rendered, "\n")
	bodyStart := 2
	for i := range lines {
		if i-bodyStart == m.cursor && i >= bodyStart {
			lines[i] = m.styles.Selected.Render(lines[i])
		}
	}
	sb.WriteString(strings.Join(lines, "\n"))

	sb.WriteString(m.styles.Bold.Render(fmt.Sprintf("Total: %s EUR", m.total.StringFixed(2))))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Footer.Render("+/-: quantity  d: remove  x: checkout  esc: back  q: quit"))
	return sb.String()
}
