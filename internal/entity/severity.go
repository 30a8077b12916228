package entity

import (
	"encoding/json"
	"fmt"
)

// Severity classifies a single check. Renderers decide how each level looks.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityHealthy
	SeverityWarning
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityUnknown: "unknown",
	SeverityHealthy: "healthy",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for sev, n := range severityNames {
		if n == name {
			*s = sev
			return nil
		}
	}
	*s = SeverityUnknown
	return nil
}

// Check is one named, classified finding.
type Check struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Value    string   `json:"value"`
}
