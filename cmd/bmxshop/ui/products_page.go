package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"bmxshop/internal/catalog"
)

// ProductsPageModel renders the browsable catalog list.
type ProductsPageModel struct {
	styles   Styles
	products []catalog.Product
	cursor   int
	offset   int
	category string
	offline  bool
	width    int
	height   int
}

// NewProductsPageModel creates the catalog page.
func NewProductsPageModel(styles Styles) ProductsPageModel {
	return ProductsPageModel{styles: styles}
}

// SetSize updates the page dimensions.
func (m *ProductsPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.clampScroll()
}

// UpdateContent replaces the listing. offline marks a fallback catalog.
func (m *ProductsPageModel) UpdateContent(products []catalog.Product, category string, offline bool) {
	m.products = products
	m.category = category
	m.offline = offline
	if m.cursor >= len(products) {
		m.cursor = 0
		m.offset = 0
	}
}

// Selected returns the product under the cursor.
func (m ProductsPageModel) Selected() (catalog.Product, bool) {
	if m.cursor < 0 || m.cursor >= len(m.products) {
		return catalog.Product{}, false
	}
	return m.products[m.cursor], true
}

// Offline reports whether the fallback catalog is being shown.
func (m ProductsPageModel) Offline() bool { return m.offline }

func (m *ProductsPageModel) clampScroll() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m ProductsPageModel) visibleRows() int {
	rows := m.height - HeaderHeight - FooterHeight - StatusBarHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Update handles navigation keys.
func (m ProductsPageModel) Update(msg tea.Msg) (ProductsPageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.products)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.products) - 1
			if m.cursor < 0 {
				m.cursor = 0
			}
		}
		m.clampScroll()
	}
	return m, nil
}

// View renders the page.
func (m ProductsPageModel) View() string {
	var sb strings.Builder

	title := "Catalog"
	if m.category != "" {
		title = "Catalog: " + m.category
	}
	sb.WriteString(m.styles.Title.Render(title))
	if m.offline {
		sb.WriteString("  ")
		sb.WriteString(m.styles.Offline.Render("OFFLINE"))
	}
	sb.WriteString("\n")

	if len(m.products) == 0 {
		sb.WriteString(m.styles.Muted.Render("No products."))
		return sb.String()
	}

	visible := m.visibleRows()
	end := m.offset + visible
	if end > len(m.products) {
		end = len(m.products)
	}

	for i := m.offset; i < end; i++ {
		p := m.products[i]
		stock := fmt.Sprintf("%d in stock", p.StockQuantity)
		if !p.InStock() {
			stock = "out of stock"
		}
		line := fmt.Sprintf("%-28s %10s EUR  %s", truncate(p.Name, 28), p.Price.StringFixed(2), stock)
		if p.Featured {
			line += "  " + m.styles.Badge.Render("FEATURED")
		}
		if i == m.cursor {
			sb.WriteString(m.styles.Selected.Render("> " + line))
		} else {
			sb.WriteString(m.styles.Body.Render("  " + line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render(fmt.Sprintf("%d/%d  ·  enter: details  a: add to cart  c: cart  q: quit",
		m.cursor+1, len(m.products))))
	return sb.String()
}

func truncate(s string, l int) string {
	if len(s) > l {
		return s[:l-3] + "..."
	}
	return s
}
