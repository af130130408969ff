package sheet

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/nav-portal/internal/models"
)

// moverWidth is the number of columns in a gainer or loser block.
const moverWidth = 3

// extractHoldings reads heatmap tiles from the holding name and change
// columns. Rows with a blank name are skipped.
func extractHoldings(rows [][]string, nameCol, changeCol int) []models.Holding {
	var out []models.Holding
	for _, r := range rows {
		if nameCol >= len(r) {
			continue
		}
		name := strings.TrimSpace(r[nameCol])
		if name == "" {
			continue
		}
		var pct float64
		if changeCol < len(r) {
			pct = ParseNumber(r[changeCol])
		}
		out = append(out, models.Holding{Name: name, ChangePct: pct})
	}
	return out
}

// extractMovers reads a name/price/change block starting at column start.
func extractMovers(rows [][]string, width, start int) ([]models.Mover, error) {
	if start < 0 || start+moverWidth > width {
		return nil, fmt.Errorf("columns %d-%d not present (%d columns)", start, start+moverWidth-1, width)
	}
	var out []models.Mover
	for _, r := range rows {
		if start >= len(r) {
			continue
		}
		name := strings.TrimSpace(r[start])
		if name == "" {
			continue
		}
		m := models.Mover{Name: name}
		if start+1 < len(r) {
			m.Price = ParseNumber(r[start+1])
		}
		if start+2 < len(r) {
			m.ChangePct = ParseNumber(r[start+2])
		}
		out = append(out, m)
	}
	return out, nil
}
