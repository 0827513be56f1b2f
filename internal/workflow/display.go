package workflow

import (
	"strings"

	"subtitle-merger/internal/domain"
)

// SameAsSourceSuffix marks a displayed output that mirrors each input directory.
const SameAsSourceSuffix = `\*`

// SubmitEnabled reports whether the current selection is complete enough to submit.
func SubmitEnabled(state domain.AppState, sameAsSource bool) bool {
	if state.Input == "" {
		return false
	}
	return sameAsSource || state.Output != ""
}

// DisplayedOutput is the value shown in the output field.
func DisplayedOutput(state domain.AppState, sameAsSource bool) string {
	if !sameAsSource {
		return state.Output
	}
	if state.Input == "" {
		return state.Input
	}
	return state.Input + SameAsSourceSuffix
}

// ModeLabels are the mode-dependent strings of the submit controls.
type ModeLabels struct {
	Icon        string `json:"icon"`
	ButtonText  string `json:"buttonText"`
	ButtonTitle string `json:"buttonTitle"`
	Selected    string `json:"selected"`
}

// LabelsFor returns the labels for mode.
func LabelsFor(mode domain.Mode) ModeLabels {
	labels := ModeLabels{
		Icon:        "FabricSyncFolder",
		ButtonText:  "Merge",
		ButtonTitle: "Merge subtitles",
	}
	if mode == domain.ModeRemove {
		labels = ModeLabels{
			Icon:        "FabricUnsyncFolder",
			ButtonText:  "Remove",
			ButtonTitle: "Remove subtitles",
		}
	}
	labels.Selected = "(" + strings.ToLower(labels.ButtonText) + " selected)"
	return labels
}

// View is everything the UI renders, derived from current state.
type View struct {
	Input                   string          `json:"input"`
	Output                  string          `json:"output"`
	DisplayedOutput         string          `json:"displayedOutput"`
	SameAsSource            bool            `json:"sameAsSource"`
	Mode                    domain.Mode     `json:"mode"`
	Labels                  ModeLabels      `json:"labels"`
	SubmitEnabled           bool            `json:"submitEnabled"`
	RemoveAds               bool            `json:"removeAds"`
	RemoveExistingSubtitles bool            `json:"removeExistingSubtitles"`
	PreferredLanguage       string          `json:"preferredLanguage"`
	Run                     domain.RunState `json:"run"`
}
