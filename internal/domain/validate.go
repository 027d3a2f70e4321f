package domain

import (
	"fmt"
	"math"
)

// ValidationResult reports structural problems found in a parsed batch.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateReadings checks the invariants a batch must satisfy before it may
// replace the current snapshot. It is a pure checker: entries are reported by
// index, never mutated or dropped. The caller decides the rejection policy
// (currently reject-all on any invalid entry).
func ValidateReadings(readings []WBGTReading) ValidationResult {
	var errs []string

	for i, r := range readings {
		if r.LocationCode == "" {
			errs = append(errs, fmt.Sprintf("item %d: missing locationCode", i))
		}
		if !isFinite(r.WBGT) {
			errs = append(errs, fmt.Sprintf("item %d: invalid WBGT value", i))
		}
		if !isFinite(r.Temperature) {
			errs = append(errs, fmt.Sprintf("item %d: invalid temperature value", i))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
