package problem

// DefaultRange is the range box used when none is given.
var DefaultRange = Range{Min: 0, Max: 15}

// DefaultObjective is the objective used when none is given.
var DefaultObjective = Objective{Expression: "x + y + z", Direction: Maximize}

// DefaultExpression is the text of a newly added constraint.
const DefaultExpression = "x + y + z <= 10"

// Palette is the color cycle for constraints added without an explicit
// color. The first four entries match the default problem.
var Palette = []string{
	"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4",
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// PaletteColor returns the palette entry for the i-th constraint.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Default returns the starting problem shown to a new user: the simplex
// x + y + z <= 10 in the positive octant.
func Default() *Problem {
	p := New()
	p.Add(DefaultExpression, "")
	p.Add("x >= 0", "")
	p.Add("y >= 0", "")
	p.Add("z >= 0", "")
	return p
}
