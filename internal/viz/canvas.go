package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a character grid where every cell holds a 2x4 braille dot
// block. Glyphs placed with Put replace the dots of their cell, and each
// cell may carry a foreground color.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]string
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]string, w)
	}
	c.Clear()
	return c
}

// DotsW and DotsH are the canvas size in sub-pixels.
func (c *Canvas) DotsW() int { return c.Width * 2 }
func (c *Canvas) DotsH() int { return c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. A cell holding a
// glyph is left alone.
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok || !isBraille(c.Grid[row][col]) {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// SetColor sets a pixel and colors its cell.
func (c *Canvas) SetColor(x, y int, color string) {
	row, col, ok := c.cell(x, y)
	if !ok || !isBraille(c.Grid[row][col]) {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if color != "" {
		c.Colors[row][col] = color
	}
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok || !isBraille(c.Grid[row][col]) {
		return
	}
	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
}

// Put writes glyph r into the cell containing sub-pixel (x, y).
func (c *Canvas) Put(x, y int, r rune, color string) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] = r
	c.Colors[row][col] = color
}

// At returns the rune of cell (col, row).
func (c *Canvas) At(col, row int) rune {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return 0
	}
	return c.Grid[row][col]
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = ""
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, color string) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetColor(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPolygon draws the closed outline through pts, given as x0,y0,x1,y1...
// A trailing odd coordinate is ignored.
func (c *Canvas) DrawPolygon(pts []int, color string) {
	n := len(pts) / 2
	if n == 0 {
		return
	}
	if n == 1 {
		c.SetColor(pts[0], pts[1], color)
		return
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		c.DrawLine(pts[2*i], pts[2*i+1], pts[2*j], pts[2*j+1], color)
	}
}

// DrawRect draws the outline of the box with corners (x0, y0) and (x1, y1).
func (c *Canvas) DrawRect(x0, y0, x1, y1 int, color string) {
	c.DrawPolygon([]int{x0, y0, x1, y0, x1, y1, x0, y1}, color)
}

// String renders the grid without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Styled renders the grid, coloring cells that carry a color. Runs of the
// same color share one style.
func (c *Canvas) Styled() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] {
				continue
			}
			run := string(row[start:j])
			if color := c.Colors[i][start]; color != "" {
				run = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run)
			}
			b.WriteString(run)
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func isBraille(r rune) bool {
	return r >= blank && r <= blank+0xff
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
