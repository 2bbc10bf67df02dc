package termdisplay

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// upperHalf draws the top pixel of a cell in the foreground color and the
// bottom pixel in the background color.
const upperHalf = "▀"

// fitCells returns the pixel size that fits a w*h image into cols*rows
// terminal cells, two pixels per cell vertically, keeping the aspect ratio.
// The returned height is always even.
func fitCells(w, h, cols, rows int) (int, int) {
	if w <= 0 || h <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0
	}
	maxW, maxH := cols, rows*2

	outW, outH := maxW, h*maxW/w
	if outH > maxH {
		outW, outH = w*maxH/h, maxH
	}
	if outW < 1 {
		outW = 1
	}
	if outH < 2 {
		outH = 2
	}
	outH -= outH % 2
	return outW, outH
}

// renderHalfBlocks scales img into cols*rows cells and renders it as rows
// of half-block characters.
func renderHalfBlocks(img image.Image, cols, rows int) string {
	b := img.Bounds()
	w, h := fitCells(b.Dx(), b.Dy(), cols, rows)
	if w == 0 {
		return ""
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := dst.RGBAAt(x, y)
			bottom := dst.RGBAAt(x, y+1)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top.R, top.G, top.B))).
				Background(lipgloss.Color(hex(bottom.R, bottom.G, bottom.B)))
			sb.WriteString(style.Render(upperHalf))
		}
	}
	return sb.String()
}

func hex(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}
