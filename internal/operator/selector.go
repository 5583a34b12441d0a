package operator

import (
	"fmt"
	"strconv"
	"strings"

	"contact-dialer/internal/directory"
)

// InvalidSelectionError reports a non-numeric or out-of-range choice.
type InvalidSelectionError struct {
	Input string
	Max   int
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("operator: invalid choice %q (expected 1-%d)", e.Input, e.Max)
}

// Select resolves a 1-based index typed by the operator.
func Select(contacts []directory.Contact, input string) (directory.Contact, error) {
	in := strings.TrimSpace(input)
	n, err := strconv.Atoi(in)
	if err != nil || n < 1 || n > len(contacts) {
		return directory.Contact{}, &InvalidSelectionError{Input: in, Max: len(contacts)}
	}
	return contacts[n-1], nil
}
