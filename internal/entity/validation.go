package entity

// Diagnostic is one message from the HTML conformance checker. Field names
// follow the checker's JSON output.
type Diagnostic struct {
	Type      string `json:"type"`
	SubType   string `json:"subType,omitempty"`
	Message   string `json:"message,omitempty"`
	Extract   string `json:"extract,omitempty"`
	FirstLine int    `json:"firstLine,omitempty"`
	LastLine  int    `json:"lastLine,omitempty"`
}

// Line returns the best known line number, or 0 when the checker gave none.
func (d Diagnostic) Line() int {
	if d.LastLine > 0 {
		return d.LastLine
	}
	return d.FirstLine
}

// Text returns the message, falling back to the source extract.
func (d Diagnostic) Text() string {
	if d.Message != "" {
		return d.Message
	}
	return d.Extract
}

// ValidationResult is the checker outcome. Valid is nil when the run finished
// without a verdict (timeout, crash) or the checker is unavailable.
type ValidationResult struct {
	Available bool         `json:"available"`
	Valid     *bool        `json:"valid"`
	Messages  []Diagnostic `json:"messages"`
	Error     string       `json:"error,omitempty"`
}

// Unavailable builds the result used when the checker cannot run at all.
func Unavailable(reason string) ValidationResult {
	return ValidationResult{Available: false, Messages: []Diagnostic{}, Error: reason}
}
