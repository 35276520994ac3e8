// Package chart draws a sequence of positive integers as a vertical bar
// chart for the terminal.
package chart

import (
	"strings"

	"github.com/fatih/color"
)

// ClearScreen moves the cursor home and clears the terminal, so the next
// frame overwrites the previous one.
const ClearScreen = "\x1b[H\x1b[2J"

// blocks holds the partial-height glyphs, indexed by eighths filled.
var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	placedColor   = color.New(color.FgGreen)
	unplacedColor = color.New(color.FgCyan)
)

// Chart renders frames of a fixed size.
type Chart struct {
	Width  int  // Maximum number of columns
	Height int  // Rows of bars
	Plain  bool // Disable coloring
}

// New returns a chart of the given size. Non-positive sizes fall back to 80x20.
func New(width, height int) *Chart {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 20
	}
	return &Chart{Width: width, Height: height}
}

// column is one rendered bar: the tallest value in its bucket, and whether
// every value in the bucket already sits at its sorted position.
type column struct {
	value  int
	placed bool
}

// Render draws values, which are expected to be a permutation of 1..n, as
// Height lines of at most Width columns. When there are more values than
// columns, neighbouring values share a column drawn at their maximum.
func (c *Chart) Render(values []int) string {
	cols := c.columns(values)
	if len(cols) == 0 {
		return strings.Repeat("\n", c.Height)
	}

	maxV := 1
	for _, col := range cols {
		maxV = max(maxV, col.value)
	}

	var sb strings.Builder
	for row := c.Height - 1; row >= 0; row-- {
		for _, col := range cols {
			eighths := col.value * c.Height * 8 / maxV
			fill := min(max(eighths-row*8, 0), 8)
			glyph := string(blocks[fill])
			if c.Plain || fill == 0 {
				sb.WriteString(glyph)
				continue
			}
			if col.placed {
				sb.WriteString(placedColor.Sprint(glyph))
			} else {
				sb.WriteString(unplacedColor.Sprint(glyph))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (c *Chart) columns(values []int) []column {
	n := len(values)
	if n == 0 {
		return nil
	}
	width := min(n, c.Width)

	cols := make([]column, width)
	for j := range cols {
		lo, hi := j*n/width, (j+1)*n/width
		col := column{placed: true}
		for i := lo; i < hi; i++ {
			col.value = max(col.value, values[i])
			if values[i] != i+1 {
				col.placed = false
			}
		}
		cols[j] = col
	}
	return cols
}
