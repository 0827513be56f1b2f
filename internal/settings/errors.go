package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt matches any CorruptionError.
	ErrCorrupt = errors.New("settings storage corrupted")

	// ErrUnsupportedLanguage is returned for a preferred language the backend cannot detect.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// CorruptionError reports a persisted representation that is not a JSON object.
type CorruptionError struct {
	Raw string
	Err error
}

func (e *CorruptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrCorrupt, e.Err)
	}
	return ErrCorrupt.Error()
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrCorrupt) match.
func (e *CorruptionError) Is(target error) bool {
	return target == ErrCorrupt
}
