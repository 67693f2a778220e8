package image

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/blacktop/go-termimg"

	"gitlab.com/tinyland/lab/tileboard/pkg/config"
	"gitlab.com/tinyland/lab/tileboard/pkg/terminal"
)

// ErrDisabled is returned when rendering is switched off.
var ErrDisabled = errors.New("image rendering is disabled (protocol=none)")

// Renderer turns images into terminal output at a size given in cells,
// caching results by source name.
type Renderer struct {
	protocol terminal.GraphicsProtocol
	cache    *Cache
}

// NewRenderer picks the protocol from cfg.Protocol, falling back to the
// detected one when it is empty or "auto".
func NewRenderer(caps terminal.Capabilities, cfg config.ImageConfig) *Renderer {
	proto := caps.Protocol
	if cfg.Protocol != "" && cfg.Protocol != "auto" {
		proto = terminal.SelectProtocolWithOverride(caps.Term, cfg.Protocol)
	}
	return &Renderer{protocol: proto, cache: NewCache(0)}
}

// NewInlineRenderer returns a half-block renderer, or a disabled one when
// the configured protocol is "none". The result is always safe to embed
// inside a composed frame.
func NewInlineRenderer(cfg config.ImageConfig) *Renderer {
	proto := terminal.ProtocolHalfblocks
	if terminal.SelectProtocolWithOverride(terminal.TermGeneric, cfg.Protocol) == terminal.ProtocolNone {
		proto = terminal.ProtocolNone
	}
	return &Renderer{protocol: proto, cache: NewCache(0)}
}

// Protocol returns the active protocol.
func (r *Renderer) Protocol() terminal.GraphicsProtocol { return r.protocol }

// Enabled reports whether Render produces output.
func (r *Renderer) Enabled() bool { return r.protocol != terminal.ProtocolNone }

// Cache exposes the render cache.
func (r *Renderer) Cache() *Cache { return r.cache }

// Render draws img into a cols x rows cell area. name keys the cache; an
// empty name disables caching for this call.
func (r *Renderer) Render(name string, img image.Image, cols, rows int) (string, error) {
	if img == nil {
		return "", fmt.Errorf("image is nil")
	}
	if !r.Enabled() {
		return "", ErrDisabled
	}
	key := CacheKey{Protocol: r.protocol.String(), Width: cols, Height: rows, Source: name}
	if name != "" {
		if s, ok := r.cache.Get(key); ok {
			return s, nil
		}
	}

	var (
		out string
		err error
	)
	switch r.protocol {
	case terminal.ProtocolKitty:
		out, err = renderTermimg(img, termimg.Kitty, cols, rows)
	case terminal.ProtocolITerm2:
		out, err = renderTermimg(img, termimg.ITerm2, cols, rows)
	case terminal.ProtocolSixel:
		out, err = renderTermimg(img, termimg.Sixel, cols, rows)
	default:
		// Half blocks: one pixel per column, two per row.
		out = Halfblocks(ResizeToFit(img, cols, rows*2))
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", r.protocol, err)
	}
	if name != "" {
		r.cache.Put(key, out)
	}
	return out, nil
}

func renderTermimg(img image.Image, proto termimg.Protocol, cols, rows int) (string, error) {
	ti := termimg.New(img)
	if ti == nil {
		return "", fmt.Errorf("go-termimg: failed to create image wrapper")
	}
	ti.Protocol(proto).Size(cols, rows).Scale(termimg.ScaleFit)
	return ti.Render()
}

// Halfblocks renders img with upper half blocks and 24-bit colour: the
// top pixel of each pair is the foreground and the bottom one the
// background. Fully transparent pairs become spaces. Rows are separated
// by newlines and every row ends with a reset.
func Halfblocks(img image.Image) string {
	if img == nil {
		return ""
	}
	px := ToNRGBA(img)
	b := px.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := px.NRGBAAt(x, y)
			var bot = top
			bot.A = 0
			if y+1 < b.Max.Y {
				bot = px.NRGBAAt(x, y+1)
			}
			switch {
			case top.A == 0 && bot.A == 0:
				sb.WriteString("\x1b[0m ")
			case top.A == 0:
				fmt.Fprintf(&sb, "\x1b[0m\x1b[38;2;%d;%d;%dm▄", bot.R, bot.G, bot.B)
			case bot.A == 0:
				fmt.Fprintf(&sb, "\x1b[0m\x1b[38;2;%d;%d;%dm▀", top.R, top.G, top.B)
			default:
				fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
					top.R, top.G, top.B, bot.R, bot.G, bot.B)
			}
		}
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}
