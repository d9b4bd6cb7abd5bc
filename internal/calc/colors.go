package calc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	colorQueryRe = regexp.MustCompile(`^(.+?)\s+(?:to|in|as)\s+(rgb|hex|hsl|hsv)$`)
	colorFuncRe  = regexp.MustCompile(`^(rgb|hsl|hsv)a?\(\s*([\d.]+)%?\s*,\s*([\d.]+)%?\s*,\s*([\d.]+)%?\s*(?:,\s*[\d.]+\s*)?\)$`)
)

type rgb struct{ r, g, b float64 }

// convertColor handles queries like "#ff8800 to hsl" or
// "rgb(255, 0, 0) to hex".
func convertColor(q string) (string, error) {
	m := colorQueryRe.FindStringSubmatch(strings.ToLower(q))
	if m == nil {
		return "", ErrNoResult
	}
	c, ok := parseColor(strings.TrimSpace(m[1]))
	if !ok {
		return "", ErrNoResult
	}
	return formatColor(c, m[2]), nil
}

func parseColor(s string) (rgb, bool) {
	if strings.HasPrefix(s, "#") {
		return hexToRGB(s)
	}
	m := colorFuncRe.FindStringSubmatch(s)
	if m == nil {
		return rgb{}, false
	}
	var v [3]float64
	for i := range v {
		f, err := strconv.ParseFloat(m[i+2], 64)
		if err != nil {
			return rgb{}, false
		}
		v[i] = f
	}
	switch m[1] {
	case "rgb":
		return rgb{v[0], v[1], v[2]}, true
	case "hsl":
		return hslToRGB(v[0], v[1], v[2]), true
	default:
		return hsvToRGB(v[0], v[1], v[2]), true
	}
}

func hexToRGB(s string) (rgb, bool) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return rgb{}, false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{float64(n >> 16 & 0xff), float64(n >> 8 & 0xff), float64(n & 0xff)}, true
}

func formatColor(c rgb, to string) string {
	switch to {
	case "hex":
		return fmt.Sprintf("#%02x%02x%02x", clampByte(c.r), clampByte(c.g), clampByte(c.b))
	case "hsl":
		h, s, l := rgbToHSL(c)
		return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", h, s, l)
	case "hsv":
		h, s, v := rgbToHSV(c)
		return fmt.Sprintf("hsv(%.0f, %.0f%%, %.0f%%)", h, s, v)
	default:
		return fmt.Sprintf("rgb(%d, %d, %d)", clampByte(c.r), clampByte(c.g), clampByte(c.b))
	}
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

func hue(r, g, b, max, delta float64) float64 {
	if delta == 0 {
		return 0
	}
	var h float64
	switch max {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h
}

func rgbToHSL(c rgb) (h, s, l float64) {
	r, g, b := c.r/255, c.g/255, c.b/255
	max, min := math.Max(r, math.Max(g, b)), math.Min(r, math.Min(g, b))
	delta := max - min
	l = (max + min) / 2
	if delta != 0 {
		s = delta / (1 - math.Abs(2*l-1))
	}
	return hue(r, g, b, max, delta), s * 100, l * 100
}

func rgbToHSV(c rgb) (h, s, v float64) {
	r, g, b := c.r/255, c.g/255, c.b/255
	max, min := math.Max(r, math.Max(g, b)), math.Min(r, math.Min(g, b))
	delta := max - min
	if max != 0 {
		s = delta / max
	}
	return hue(r, g, b, max, delta), s * 100, max * 100
}

func sector(h, c, x float64) (float64, float64, float64) {
	switch int(math.Mod(h, 360)) / 60 {
	case 0:
		return c, x, 0
	case 1:
		return x, c, 0
	case 2:
		return 0, c, x
	case 3:
		return 0, x, c
	case 4:
		return x, 0, c
	default:
		return c, 0, x
	}
}

func hslToRGB(h, s, l float64) rgb {
	s, l = s/100, l/100
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	r, g, b := sector(h, c, x)
	return rgb{(r + m) * 255, (g + m) * 255, (b + m) * 255}
}

func hsvToRGB(h, s, v float64) rgb {
	s, v = s/100, v/100
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	r, g, b := sector(h, c, x)
	return rgb{(r + m) * 255, (g + m) * 255, (b + m) * 255}
}
