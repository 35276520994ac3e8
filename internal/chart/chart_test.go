package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestNew_Defaults(t *testing.T) {
	c := New(0, -1)
	assert.Equal(t, 80, c.Width)
	assert.Equal(t, 20, c.Height)
}

func TestRender_FullHeightBars(t *testing.T) {
	c := &Chart{Width: 10, Height: 3, Plain: true}

	out := lines(c.Render([]int{1, 2, 3}))
	require.Len(t, out, 3)
	assert.Equal(t, "  █", out[0])
	assert.Equal(t, " ██", out[1])
	assert.Equal(t, "███", out[2])
}

func TestRender_PartialBlocks(t *testing.T) {
	c := &Chart{Width: 10, Height: 1, Plain: true}

	// 1/2 of the max is four eighths.
	out := lines(c.Render([]int{1, 2}))
	require.Len(t, out, 1)
	assert.Equal(t, "▄█", out[0])
}

func TestRender_BucketsWhenNarrow(t *testing.T) {
	c := &Chart{Width: 2, Height: 2, Plain: true}

	out := lines(c.Render([]int{4, 1, 2, 3}))
	require.Len(t, out, 2)
	// Column 0 holds {4,1} and shows 4; column 1 holds {2,3} and shows 3.
	for _, line := range out {
		assert.Equal(t, 2, len([]rune(line)))
	}
	assert.Equal(t, "█▄", out[0])
	assert.Equal(t, "██", out[1])
}

func TestRender_Empty(t *testing.T) {
	c := &Chart{Width: 5, Height: 4, Plain: true}
	assert.Equal(t, "\n\n\n\n", c.Render(nil))
}

func TestColumns_Placement(t *testing.T) {
	c := &Chart{Width: 4, Height: 1}

	cols := c.columns([]int{1, 3, 2, 4})
	require.Len(t, cols, 4)
	assert.True(t, cols[0].placed)
	assert.False(t, cols[1].placed)
	assert.False(t, cols[2].placed)
	assert.True(t, cols[3].placed)
}

func TestRender_ColoredKeepsGlyphs(t *testing.T) {
	c := &Chart{Width: 10, Height: 2}

	out := c.Render([]int{2, 1})
	assert.Equal(t, 3, strings.Count(out, "█"))
	assert.Len(t, lines(out), 2)
}
