package preferences

import "slices"

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Next cycles light → dark → system → light.
func (t Theme) Next() Theme {
	switch t {
	case ThemeLight:
		return ThemeDark
	case ThemeDark:
		return ThemeSystem
	default:
		return ThemeLight
	}
}

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// AnalysisMode is how the user prefers to capture label text.
type AnalysisMode string

const (
	ModeText   AnalysisMode = "text"
	ModeVoice  AnalysisMode = "voice"
	ModeCamera AnalysisMode = "camera"
)

func (m AnalysisMode) Valid() bool {
	return slices.Contains([]AnalysisMode{ModeText, ModeVoice, ModeCamera}, m)
}

// Preferences is the per-user settings record.
type Preferences struct {
	Theme               Theme        `json:"theme"`
	Notifications       bool         `json:"notifications"`
	Language            string       `json:"language"`
	DefaultAnalysisMode AnalysisMode `json:"defaultAnalysisMode"`
}

// Defaults returns the settings of a user who never changed anything.
func Defaults() Preferences {
	return Preferences{
		Theme:               ThemeSystem,
		Notifications:       true,
		Language:            "en",
		DefaultAnalysisMode: ModeText,
	}
}

// Patch carries optional updates; nil fields are left unchanged.
type Patch struct {
	Theme               *Theme        `json:"theme,omitempty"`
	Notifications       *bool         `json:"notifications,omitempty"`
	Language            *string       `json:"language,omitempty"`
	DefaultAnalysisMode *AnalysisMode `json:"defaultAnalysisMode,omitempty"`
}

// Bookmark pins a history item.
type Bookmark struct {
	HistoryID string `json:"historyId"`
	CreatedAt int64  `json:"createdAt"`
	Note      string `json:"note,omitempty"`
}
