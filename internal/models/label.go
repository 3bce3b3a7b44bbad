package models

import (
	"math"
	"regexp"
	"strconv"
)

// Label text colors
const (
	TextColorWhite = "white"
	TextColorBlack = "black"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Label is a user-owned tag that can be attached to any number of projects
type Label struct {
	ID        string `json:"id" yaml:"id"`
	OwnerID   string `json:"owner_id" yaml:"owner_id"`
	Title     string `json:"title" yaml:"title"`
	Color     string `json:"color" yaml:"color"`           // "#RRGGBB"
	TextColor string `json:"text_color" yaml:"text_color"` // "white" or "black"
}

// IsValidHexColor reports whether s has the form #RRGGBB.
func IsValidHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// IsValidTextColor reports whether s is one of the two supported text colors.
func IsValidTextColor(s string) bool {
	return s == TextColorWhite || s == TextColorBlack
}

// OptimalTextColor picks black or white text for the given background using
// WCAG 2.1 relative luminance. Malformed colors get white text.
func OptimalTextColor(background string) string {
	if !IsValidHexColor(background) {
		return TextColorWhite
	}
	channel := func(s string) float64 {
		v, _ := strconv.ParseUint(s, 16, 8)
		c := float64(v) / 255
		if c <= 0.03928 {
			return c / 12.92
		}
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	luminance := 0.2126*channel(background[1:3]) +
		0.7152*channel(background[3:5]) +
		0.0722*channel(background[5:7])
	if luminance > 0.5 {
		return TextColorBlack
	}
	return TextColorWhite
}
