package viz

import (
	"math"
	"strings"
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

// Canvas is a Braille canvas of Width×Height cells, i.e. (2·Width)×(4·Height)
// dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y), counted from the top left.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
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
		c.Set(x0, y0)
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

// Bounds maps data coordinates onto the canvas.
type Bounds struct {
	XMin, XMax, YMin, YMax float64
}

// BoundsOf spans x and every finite y in ys.
func BoundsOf(x []float64, ys ...[]float64) Bounds {
	b := Bounds{XMin: math.Inf(1), XMax: math.Inf(-1), YMin: math.Inf(1), YMax: math.Inf(-1)}
	for _, v := range x {
		b.XMin, b.XMax = math.Min(b.XMin, v), math.Max(b.XMax, v)
	}
	for _, y := range ys {
		for _, v := range y {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			b.YMin, b.YMax = math.Min(b.YMin, v), math.Max(b.YMax, v)
		}
	}
	if b.YMin > b.YMax {
		b.YMin, b.YMax = 0, 0
	}
	if b.YMax == b.YMin {
		b.YMin, b.YMax = b.YMin-1, b.YMax+1
	}
	return b
}

// Polyline plots y(x) as connected segments. Non-finite samples break the
// line.
func (c *Canvas) Polyline(x, y []float64, b Bounds) {
	if len(x) != len(y) || b.XMax <= b.XMin || b.YMax <= b.YMin {
		return
	}
	w := float64(c.Width*2 - 1)
	h := float64(c.Height*4 - 1)
	project := func(px, py float64) (int, int) {
		py = math.Max(b.YMin, math.Min(b.YMax, py))
		return int(math.Round((px - b.XMin) / (b.XMax - b.XMin) * w)),
			int(math.Round((b.YMax - py) / (b.YMax - b.YMin) * h))
	}

	havePrev := false
	var px, py int
	for i := range x {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			havePrev = false
			continue
		}
		cx, cy := project(x[i], y[i])
		if havePrev {
			if cx != px || cy != py {
				c.DrawLine(px, py, cx, cy)
			}
		} else {
			c.Set(cx, cy)
		}
		px, py, havePrev = cx, cy, true
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
