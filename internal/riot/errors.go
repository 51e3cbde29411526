package riot

import "fmt"

// MissingDataError marks a payload that lacks a field the pipeline
// cannot proceed without. The whole payload is rejected, never
// partially persisted.
type MissingDataError struct {
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("payload missing data: %s", e.Field)
}
