package domain

import "fmt"

// Theme is the persisted UI colour preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

const DefaultTheme = ThemeDark

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), nil
	}
	return "", fmt.Errorf("invalid theme %q", s)
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
