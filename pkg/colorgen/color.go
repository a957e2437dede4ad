package colorgen

import (
	"fmt"
	"math"

	"github.com/patrickmn/go-cache"
)

// Generator maps a collaborator id deterministically to an HSL color tuned
// for legibility against both a light and a dark reference background, so
// cursor labels stay readable under either theme. The mapping is cached per
// id for the process lifetime.
type Generator struct {
	cache *cache.Cache
}

func NewGenerator() *Generator {
	return &Generator{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

const minContrast = 4.5

var (
	whiteRef = [3]float64{255, 255, 255}
	darkRef  = hslToRgb(248, 100, 8) // dark purple background
)

// ColorFor returns the cached or freshly derived color for an id, formatted
// as a CSS hsl() string.
func (g *Generator) ColorFor(id string) string {
	if v, found := g.cache.Get(id); found {
		return v.(string)
	}

	hue := float64(hashString(id) % 360)
	saturation := 70.0

	// Pick the lightness that maximizes the smaller of the two contrast
	// ratios. Stop early once both clear the target; with these references
	// the optimum sits a hair under it, so the best candidate is kept.
	bestLightness := 50.0
	bestScore := -1.0
	for lightness := 5.0; lightness <= 95; lightness++ {
		rgb := hslToRgb(hue, saturation, lightness)
		score := math.Min(contrast(rgb, whiteRef), contrast(rgb, darkRef))
		if score > bestScore {
			bestScore = score
			bestLightness = lightness
		}
		if score >= minContrast {
			break
		}
	}

	color := fmt.Sprintf("hsl(%d, %d%%, %d%%)", int(hue), int(saturation), int(bestLightness))
	g.cache.Set(id, color, cache.NoExpiration)
	return color
}

// hashString is the classic 31-shift string hash, kept in 32-bit arithmetic.
func hashString(s string) uint32 {
	var hash int32
	for i := 0; i < len(s); i++ {
		hash = int32(s[i]) + (hash<<5 - hash)
	}
	if hash < 0 {
		return uint32(-hash)
	}
	return uint32(hash)
}

func hslToRgb(h, s, l float64) [3]float64 {
	s /= 100
	l /= 100
	k := func(n float64) float64 { return math.Mod(n+h/30, 12) }
	a := s * math.Min(l, 1-l)
	f := func(n float64) float64 {
		return l - a*math.Max(-1, math.Min(k(n)-3, math.Min(9-k(n), 1)))
	}
	return [3]float64{255 * f(0), 255 * f(8), 255 * f(4)}
}

func luminance(rgb [3]float64) float64 {
	var lin [3]float64
	for i, v := range rgb {
		v /= 255
		if v <= 0.03928 {
			lin[i] = v / 12.92
		} else {
			lin[i] = math.Pow((v+0.055)/1.055, 2.4)
		}
	}
	return 0.2126*lin[0] + 0.7152*lin[1] + 0.0722*lin[2]
}

func contrast(a, b [3]float64) float64 {
	l1 := luminance(a)
	l2 := luminance(b)
	return (math.Max(l1, l2) + 0.05) / (math.Min(l1, l2) + 0.05)
}
