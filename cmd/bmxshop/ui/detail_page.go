package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"bmxshop/internal/api"
	"bmxshop/internal/catalog"
)

// DetailPageModel renders one product with its reviews.
type DetailPageModel struct {
	viewport viewport.Model
	styles   Styles
	renderer *glamour.TermRenderer
	product  catalog.Product
	reviews  []api.Review
	width    int
	height   int
}

// NewDetailPageModel creates the product detail page.
func NewDetailPageModel(styles Styles) DetailPageModel {
	vp := viewport.New(80, 20)
	style := "light"
	if styles.Theme.IsDark {
		style = "dark"
	}
	// Rendering still works without the markdown renderer, so a
	// construction error just degrades to plain text.
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(76),
	)
	return DetailPageModel{
		viewport: vp,
		styles:   styles,
		renderer: renderer,
	}
}

// SetSize updates the size of the viewport.
func (m *DetailPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - HeaderHeight - FooterHeight
	m.updateContent()
}

// UpdateContent sets the product being shown.
func (m *DetailPageModel) UpdateContent(p catalog.Product, reviews []api.Review) {
	m.product = p
	m.reviews = reviews
	m.updateContent()
}

func (m *DetailPageModel) updateContent() {
	var sb strings.Builder

	p := m.product
	sb.WriteString(m.styles.Title.Render(p.Name))
	if p.Featured {
		sb.WriteString("  ")
		sb.WriteString(m.styles.Badge.Render("FEATURED"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Subtitle.Render(p.Category))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Price.Render(p.Price.StringFixed(2) + " EUR"))
	sb.WriteString("\n")
	if p.InStock() {
		sb.WriteString(m.styles.Success.Render(fmt.Sprintf("%d in stock", p.StockQuantity)))
	} else {
		sb.WriteString(m.styles.Error.Render("out of stock"))
	}
	sb.WriteString("\n\n")

	if p.Description != "" {
		if m.renderer != nil {
			if md, err := m.renderer.Render(p.Description); err == nil {
				sb.WriteString(md)
			} else {
				sb.WriteString(m.styles.Body.Render(p.Description))
				sb.WriteString("\n")
			}
		} else {
			sb.WriteString(m.styles.Body.Render(p.Description))
			sb.WriteString("\n")
		}
	}

	if len(m.reviews) > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Bold.Render(fmt.Sprintf("Reviews (%d)", len(m.reviews))))
		sb.WriteString("\n")
		for _, r := range m.reviews {
			stars := strings.Repeat("★", r.Rating) + strings.Repeat("☆", 5-r.Rating)
			sb.WriteString(m.styles.Prompt.Render(stars))
			sb.WriteString("  ")
			sb.WriteString(m.styles.Muted.Render(r.Username))
			sb.WriteString("\n")
			if r.Comment != "" {
				sb.WriteString(m.styles.Body.Render("  " + r.Comment))
				sb.WriteString("\n")
			}
		}
	}

	m.viewport.SetContent(sb.String())
}

// Update handles scrolling.
func (m DetailPageModel) Update(msg tea.Msg) (DetailPageModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the page.
func (m DetailPageModel) View() string {
	footer := m.styles.Footer.Render("a: add to cart  esc: back  q: quit")
	return m.viewport.View() + "\n" + footer
}
