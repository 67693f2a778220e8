package terminal

import (
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
	"golang.org/x/sys/unix"
)

// defaultCellPx is the assumed pixel width of one column when the
// terminal does not report pixels. It keeps the breakpoint table usable
// in plain cell terms: 150 columns is lg, 125 md, 96 sm, 60 xs.
const defaultCellPx = 8

// Size is the terminal geometry. Pixel fields are 0 when the terminal
// does not report them.
type Size struct {
	Cols, Rows     int
	PixelW, PixelH int
	CellW, CellH   int
}

// GetSize measures the terminal. Pixel sizes only come from TIOCGWINSZ;
// x/term and the COLUMNS/LINES variables give cells, and 80x24 is the
// last resort.
func GetSize() Size {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if s, ok := winsize(f.Fd()); ok {
			return s
		}
	}
	if w, h, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 && h > 0 {
		return Size{Cols: w, Rows: h}
	}
	return Size{Cols: positiveEnv("COLUMNS", 80), Rows: positiveEnv("LINES", 24)}
}

// CellWidth is the live cell width in pixels, or 0.
func CellWidth() int {
	return GetSize().CellW
}

// PixelWidth is the width of cols columns in pixels. It uses cellW when
// known, then fallback, then defaultCellPx.
func PixelWidth(cols, cellW, fallback int) int {
	switch {
	case cellW > 0:
		return cols * cellW
	case fallback > 0:
		return cols * fallback
	}
	return cols * defaultCellPx
}

func winsize(fd uintptr) (Size, bool) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return Size{}, false
	}
	s := Size{
		Cols: int(ws.Col), Rows: int(ws.Row),
		PixelW: int(ws.Xpixel), PixelH: int(ws.Ypixel),
	}
	s.CellW = s.PixelW / s.Cols
	s.CellH = s.PixelH / s.Rows
	return s, true
}

func positiveEnv(name string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil && n > 0 {
		return n
	}
	return fallback
}
