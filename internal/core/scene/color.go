package scene

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const DefaultColor = "#0EA5E9"

// NormalizeColor canonicalises hex colours ("#0EA5E9" -> "#0ea5e9"). Anything
// that is not a hex colour is kept as given; colour is free-form display data.
// An empty string falls back to fallback.
func NormalizeColor(color, fallback string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		color = fallback
	}
	if c, err := colorful.Hex(color); err == nil {
		return c.Hex()
	}
	return color
}
