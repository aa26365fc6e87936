package models

import (
	"errors"
	"fmt"
)

var ErrInvalidTheme = errors.New("invalid theme")

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// Preferences are the settings panel knobs other than the theme.
type Preferences struct {
	FontSize      FontSize `json:"font_size"`
	Language      string   `json:"language"`
	Notifications bool     `json:"notifications"`
	TextToSpeech  bool     `json:"text_to_speech"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		FontSize:      FontMedium,
		Language:      "english",
		Notifications: true,
		TextToSpeech:  false,
	}
}

func (p Preferences) Validate() error {
	switch p.FontSize {
	case FontSmall, FontMedium, FontLarge:
	default:
		return fmt.Errorf("invalid font size %q", p.FontSize)
	}
	if p.Language == "" {
		return errors.New("language must not be empty")
	}
	return nil
}
