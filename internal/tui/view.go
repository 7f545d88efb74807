package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/jask/baydesk/internal/catalog"
	"github.com/jask/baydesk/internal/config"
	"github.com/jask/baydesk/internal/geometry"
)

func (a *App) View() string {
	w, h := a.width, a.height
	if w <= 0 || h <= 0 {
		w, h = 100, 30
	}
	footer := padCells(a.footer(), w)
	sc := newScreen(a.mainView(w, h-1), w, h-1)
	if a.stack.Len() > 0 {
		sc.dim()
		top, _ := a.stack.Top()
		for _, e := range a.stack.Ordered() {
			d, ok := a.dialogs[e.ID]
			if !ok {
				continue
			}
			r := e.Surface.Live()
			sc.stamp(renderPanel(r, e.Title, d.body(a, r.W-2), e.ID == top.ID, e.Surface.Gesture() != geometry.GestureNone), r.X, r.Y)
		}
	}
	return sc.String() + "\n" + footer
}

func (a *App) footer() string {
	if top, ok := a.stack.Top(); ok {
		if d, ok := a.dialogs[top.ID]; ok {
			return renderFooter(a.keys.HelpBindings(d.scope(), scopeDialog))
		}
	}
	return renderFooter(a.keys.HelpBindings(scopeMain))
}

func (a *App) mainView(w, h int) string {
	lines := []string{titleBarStyle.Render(padCells(" baydesk · "+a.sourceLabel(), w)), ""}

	codeW, modelW, condW, costW := 14, 18, 11, 10
	titleW := max(10, w-codeW-modelW-condW-costW-8)
	header := fmt.Sprintf("  %-*s %-*s %-*s %-*s %*s", codeW, "CODE", titleW, "TITLE", modelW, "MODEL", condW, "CONDITION", costW, "COST")
	lines = append(lines, labelStyle.Render(ansi.Truncate(header, w, "")))

	if len(a.skus) == 0 {
		lines = append(lines, dimStyle.Render("  no SKUs yet; press n to create one"))
	}
	rows := max(0, h-len(lines)-2)
	start := 0
	if a.skuCursor >= rows {
		start = a.skuCursor - rows + 1
	}
	for i := start; i < len(a.skus) && i < start+rows; i++ {
		s := a.skus[i]
		row := fmt.Sprintf("%-*s %-*s %-*s %-*s ", codeW, cell(s.Code, codeW), titleW, cell(s.Title, titleW),
			modelW, cell(s.ModelName, modelW), condW, cell(s.Condition, condW))
		row += costStyle.Render(fmt.Sprintf("%*s", costW, catalog.FormatCents(s.CostCents)))
		marker := "  "
		if i == a.skuCursor {
			marker = cursorStyle.Render("› ")
		}
		lines = append(lines, ansi.Truncate(marker+row, w, ""))
	}

	lines = append(newScreen(strings.Join(lines, "\n"), w, max(1, h-1)).rows, padCells(a.statusLine(), w))
	return strings.Join(lines, "\n")
}

func (a *App) statusLine() string {
	if a.status == "" {
		return ""
	}
	if a.statusErr {
		return errorStyle.Render(" " + a.status)
	}
	return okStyle.Render(" " + a.status)
}

func (a *App) sourceLabel() string {
	if a.cfg.Catalog.Source == config.SourceLocal {
		return "local catalog " + a.cfg.Database.Path
	}
	return a.cfg.API.BaseURL
}

func cell(s string, w int) string {
	return ansi.Truncate(s, w, "…")
}
