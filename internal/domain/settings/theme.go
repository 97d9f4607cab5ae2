package settings

import (
	"fmt"
	"regexp"
	"strings"
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Theme holds the calendar's display colors.
type Theme struct {
	HeaderBackground string `json:"headerBackground"`
	HeaderText       string `json:"headerText"`
	TodayHighlight   string `json:"todayHighlight"`
	CellBorder       string `json:"cellBorder"`
	EventText        string `json:"eventText"`
	MoreLink         string `json:"moreLink"`
}

// DefaultTheme returns the built-in colors.
func DefaultTheme() Theme {
	return Theme{
		HeaderBackground: "#f3f3f3",
		HeaderText:       "#080707",
		TodayHighlight:   "#eef4ff",
		CellBorder:       "#dddbda",
		EventText:        "#ffffff",
		MoreLink:         "#0070d2",
	}
}

// ThemeKey binds a settings key to one Theme field.
type ThemeKey struct {
	Key   string
	Label string
	get   func(Theme) string
	set   func(*Theme, string)
}

// Get reads the bound field.
func (k ThemeKey) Get(t Theme) string { return k.get(t) }

// ThemeKeys lists every editable theme color in display order.
var ThemeKeys = []ThemeKey{
	{"headerBackground", "Header background",
		func(t Theme) string { return t.HeaderBackground }, func(t *Theme, v string) { t.HeaderBackground = v }},
	{"headerText", "Header text",
		func(t Theme) string { return t.HeaderText }, func(t *Theme, v string) { t.HeaderText = v }},
	{"todayHighlight", "Today highlight",
		func(t Theme) string { return t.TodayHighlight }, func(t *Theme, v string) { t.TodayHighlight = v }},
	{"cellBorder", "Cell border",
		func(t Theme) string { return t.CellBorder }, func(t *Theme, v string) { t.CellBorder = v }},
	{"eventText", "Event text",
		func(t Theme) string { return t.EventText }, func(t *Theme, v string) { t.EventText = v }},
	{"moreLink", "More link",
		func(t Theme) string { return t.MoreLink }, func(t *Theme, v string) { t.MoreLink = v }},
}

func lookupKey(key string) (ThemeKey, bool) {
	for _, k := range ThemeKeys {
		if strings.EqualFold(k.Key, key) {
			return k, true
		}
	}
	return ThemeKey{}, false
}

// ValidColor reports whether v is a #rgb or #rrggbb color.
func ValidColor(v string) bool {
	return colorPattern.MatchString(v)
}

// SetColor returns a copy of t with the color for key replaced.
func (t Theme) SetColor(key, value string) (Theme, error) {
	k, ok := lookupKey(key)
	if !ok {
		return t, fmt.Errorf("%w: %q", ErrUnknownThemeKey, key)
	}
	value = strings.TrimSpace(value)
	if !ValidColor(value) {
		return t, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	out := t
	k.set(&out, value)
	return out, nil
}

// ValidateChanges checks every key and color in changes without applying
// them.
func ValidateChanges(changes map[string]string) error {
	t := DefaultTheme()
	for key, value := range changes {
		if _, err := t.SetColor(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Colors returns the theme as key/value pairs.
func (t Theme) Colors() map[string]string {
	out := make(map[string]string, len(ThemeKeys))
	for _, k := range ThemeKeys {
		out[k.Key] = k.get(t)
	}
	return out
}

// withDefaults fills blank or invalid fields from DefaultTheme.
func (t Theme) withDefaults() Theme {
	def := DefaultTheme()
	out := t
	for _, k := range ThemeKeys {
		if !ValidColor(k.get(out)) {
			k.set(&out, k.get(def))
		}
	}
	return out
}
