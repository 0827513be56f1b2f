package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned when a mode name is neither merge nor remove.
var ErrInvalidMode = errors.New("invalid mode")

// Mode selects whether subtitle tracks are merged into or removed from videos.
type Mode string

const (
	ModeMerge  Mode = "merge"
	ModeRemove Mode = "remove"
)

// ParseMode converts user input into a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeMerge:
		return ModeMerge, nil
	case ModeRemove:
		return ModeRemove, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, value)
	}
}

// Role identifies which directory a selection fills.
type Role string

const (
	RoleInput  Role = "input"
	RoleOutput Role = "output"
)

// Persisted settings keys.
const (
	SettingRemoveSubtitles         = "isRemoveSubtitles"
	SettingSameAsSource            = "isSameAsSource"
	SettingRemoveAds               = "isRemoveAds"
	SettingRemoveExistingSubtitles = "isRemoveExistingSubtitles"
	SettingPreferredLanguage       = "preferredLanguage"
)

// AppState holds the directories chosen during this process lifetime.
type AppState struct {
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
}

// RunState is the display state of the batch submission workflow.
type RunState struct {
	Loading       bool   `json:"loading"`
	DialogVisible bool   `json:"dialogVisible"`
	ResultTitle   string `json:"resultTitle"`
	ResultMessage string `json:"resultMessage"`
}

// BatchRequest is the body sent to the process_batch endpoint.
type BatchRequest struct {
	Input    string         `json:"input,omitempty"`
	Output   string         `json:"output,omitempty"`
	Settings map[string]any `json:"settings"`
}

// BatchResponse is the payload returned by a completed batch.
type BatchResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// SupportedLanguages lists the subtitle languages the backend can detect.
var SupportedLanguages = []string{
	"Chinese",
	"Dutch",
	"English",
	"Spanish",
	"French",
	"German",
	"Italian",
	"Japanese",
	"Portuguese",
	"Russian",
	"Swedish",
}

// IsSupportedLanguage reports whether name is one of SupportedLanguages.
func IsSupportedLanguage(name string) bool {
	for _, lang := range SupportedLanguages {
		if lang == name {
			return true
		}
	}
	return false
}
