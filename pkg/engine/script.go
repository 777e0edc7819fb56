package engine

import (
	"strconv"
	"strings"

	"github.com/chazu/feasible/pkg/problem"
)

// Script renders p as a problem script that Evaluate turns back into an
// equivalent problem. Constraint IDs are not preserved; they are minted
// again on evaluation.
func Script(p *problem.Problem) string {
	var sb strings.Builder

	sb.WriteString("(bounds ")
	sb.WriteString(formatNumber(p.Range.Min))
	sb.WriteByte(' ')
	sb.WriteString(formatNumber(p.Range.Max))
	sb.WriteString(")\n")

	sb.WriteString("(objective ")
	sb.WriteString(strconv.Quote(p.Objective.Expression))
	sb.WriteString(" :direction :")
	sb.WriteString(string(p.Objective.Direction))
	sb.WriteString(")\n")

	if len(p.Constraints) > 0 {
		sb.WriteByte('\n')
	}
	for _, c := range p.Constraints {
		sb.WriteString("(constraint ")
		sb.WriteString(strconv.Quote(c.Expression))
		if c.Color != "" {
			sb.WriteString(" :color ")
			sb.WriteString(strconv.Quote(c.Color))
		}
		if !c.Enabled {
			sb.WriteString(" :enabled false")
		}
		sb.WriteString(")\n")
	}
	return sb.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
