package highlight

import "fmt"

// AnchorFieldError reports which field of a persisted anchor failed to
// decode or validate (§7: "the anchor deserializer reports which field was
// invalid").
type AnchorFieldError struct {
	Field  string
	Reason string
}

func (e *AnchorFieldError) Error() string {
	return fmt.Sprintf("highlight: anchor field %q invalid: %s", e.Field, e.Reason)
}
