package models

import "strings"

// colorHex is the single authoritative color table. Validation and UI
// payloads both read from here; no handler carries its own copy.
var colorHex = map[string]string{
	"red":    "#e53935",
	"blue":   "#1e88e5",
	"green":  "#43a047",
	"yellow": "#fdd835",
	"purple": "#8e24aa",
	"pink":   "#d81b60",
	"orange": "#fb8c00",
	"white":  "#fafafa",
	"black":  "#212121",
	"gold":   "#fbc02d",
	"silver": "#b0bec5",
}

// ValidColor reports whether name is a known balloon color. Matching is
// case-insensitive, like stock lookups.
func ValidColor(name string) bool {
	_, ok := colorHex[strings.ToLower(name)]
	return ok
}

// ColorHex returns the display hex for a color, or "" if unknown.
func ColorHex(name string) string {
	return colorHex[strings.ToLower(name)]
}

// ColorNames returns every known color name. Order is not specified.
func ColorNames() []string {
	names := make([]string, 0, len(colorHex))
	for name := range colorHex {
		names = append(names, name)
	}
	return names
}
