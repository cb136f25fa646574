package theme

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const hexDigits = "0123456789abcdefABCDEF"

var ErrInvalidColor = errors.New("invalid color")

// RGBA is a color with an alpha channel in [0, 1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

// String formats c the way stylesheets expect: hex when opaque, rgba() otherwise.
func (c RGBA) String() string {
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}

	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, formatAlpha(c.A))
}

// ParseColor parses #rgb, #rrggbb, #rrggbbaa, rgb() and rgba() colors.
func ParseColor(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s, s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s, s[len("rgb("):len(s)-1], 3)
	default:
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
}

// Transparentize decreases the opacity of color by amount, clamping the result to [0, 1].
func Transparentize(amount float64, color string) (string, error) {
	c, err := ParseColor(color)
	if err != nil {
		return "", err
	}
	c.A = round2(math.Max(0, math.Min(1, c.A-amount)))

	return c.String(), nil
}

func parseHex(h string) (RGBA, error) {
	if h == "" || strings.Trim(h, hexDigits) != "" {
		return RGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, h)
	}

	alpha := 1.0
	switch len(h) {
	case 3, 6:
	case 8:
		a, err := strconv.ParseUint(h[6:], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, h)
		}
		alpha = round2(float64(a) / 255)
		h = h[:6]
	default:
		return RGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, h)
	}

	c, err := colorful.Hex("#" + h)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, h)
	}
	r, g, b := c.RGB255()

	return RGBA{R: r, G: g, B: b, A: alpha}, nil
}

func parseFunc(raw, args string, n int) (RGBA, error) {
	parts := strings.Split(args, ",")
	if len(parts) != n {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}

	var rgb [3]uint8
	for i := range 3 {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
		}
		rgb[i] = uint8(v)
	}

	alpha := 1.0
	if n == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
		}
		alpha = a
	}

	return RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}, nil
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func formatAlpha(a float64) string { return strconv.FormatFloat(a, 'f', -1, 64) }
