// Package export writes map snapshots as SVG.
package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/san-kum/simwatch/internal/viz"
)

const background = "#0a0a0a"

// FrameToSVG draws f in viewport coordinates: weather regions, then
// landmasses and bases, then entities with their annotation as a tooltip.
func FrameToSVG(w io.Writer, f viz.Frame) error {
	bw := bufio.NewWriter(w)
	width, height := f.Viewport.W, f.Viewport.H

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	bw.WriteString("<g id=\"weather\" fill-opacity=\"0.35\">\n")
	for _, rg := range f.Regions {
		x, y := math.Min(rg.Rect.Min.X, rg.Rect.Max.X), math.Min(rg.Rect.Min.Y, rg.Rect.Max.Y)
		rw, rh := math.Abs(rg.Rect.Max.X-rg.Rect.Min.X), math.Abs(rg.Rect.Max.Y-rg.Rect.Min.Y)
		fmt.Fprintf(bw, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, x, y, rw, rh, attr(rg.Color))
	}
	bw.WriteString("</g>\n")

	if f.Geography != nil {
		bw.WriteString("<g id=\"land\" stroke=\"#888888\" stroke-width=\"1\">\n")
		for _, lm := range f.Geography.Landmasses {
			color := lm.Color
			if color == "" {
				color = "#2d4d2d"
			}
			fmt.Fprintf(bw, `<polygon points="%s" fill="%s"><title>%s</title></polygon>
`, points(lm.Coords), attr(color), html.EscapeString(lm.Name))
		}
		for _, b := range f.Geography.Bases {
			fmt.Fprintf(bw, `<rect x="%.1f" y="%.1f" width="6" height="6" fill="#d7d7af"><title>%s</title></rect>
`, b.X-3, b.Y-3, html.EscapeString(b.Name))
		}
		bw.WriteString("</g>\n")
	}

	bw.WriteString("<g id=\"entities\" font-family=\"monospace\" font-size=\"10\" text-anchor=\"middle\">\n")
	for _, sp := range f.Sprites {
		color := sp.Visual.Color
		if color == "" {
			color = "#ffffff"
		}
		fmt.Fprintf(bw, `<g><title>%s</title><circle cx="%.1f" cy="%.1f" r="3" fill="%s"/><text x="%.1f" y="%.1f" fill="%s">%s</text></g>
`, html.EscapeString(sp.Annotation), sp.Pos.X, sp.Pos.Y, attr(color),
			sp.Pos.X, sp.Pos.Y-5, attr(color), html.EscapeString(string(sp.Visual.Glyph)))
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// CanvasToSVG converts a Braille canvas to SVG format, one circle per dot.
// Glyph cells become text.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00ff00" font-family="monospace" font-size="%.1f">
`, width, height, width, height, background, scale*3)

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			fill := ""
			if c := canvas.Colors[row][col]; c != "" {
				fill = fmt.Sprintf(` fill="%s"`, attr(c))
			}

			if r < 0x2800 || r > 0x28ff {
				fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f"%s>%s</text>
`, baseX, baseY+scale*3, fill, html.EscapeString(string(r)))
				continue
			}
			pattern := int(r - 0x2800)
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"%s/>
`, cx, cy, dotRadius, fill)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func points(coords []float64) string {
	var sb strings.Builder
	for i := 0; i+1 < len(coords); i += 2 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", coords[i], coords[i+1])
	}
	return sb.String()
}

func attr(s string) string {
	return html.EscapeString(s)
}
