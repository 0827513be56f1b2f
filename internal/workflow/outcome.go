package workflow

import "subtitle-merger/internal/domain"

const (
	// SuccessMessage is shown when the backend reports neither error nor warning.
	SuccessMessage = "Batch successfully processed without any errors or warnings."

	// ErrorTitle and FailureMessage are shown when the batch could not be processed.
	ErrorTitle     = "Error"
	FailureMessage = "There was an error which prevented the batch from being processed."
)

// Outcome is the result of one submission: a backend response or a local failure.
type Outcome struct {
	Response domain.BatchResponse `json:"response"`
	Err      error                `json:"-"`
}

// Failed reports whether the batch never produced a backend response.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Dialog is the title and text shown after a submission completes.
type Dialog struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// DialogFor maps an outcome to its dialog. Failure details are never included.
func DialogFor(o Outcome) Dialog {
	if o.Failed() {
		return Dialog{Title: ErrorTitle, Text: FailureMessage}
	}

	text := o.Response.Error
	if text == "" {
		text = o.Response.Warning
	}
	if text == "" {
		text = SuccessMessage
	}
	return Dialog{Title: o.Response.Status, Text: text}
}
