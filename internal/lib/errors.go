package lib

import "fmt"

// WrapError attaches a sentinel error to a cause so both survive errors.Is checks
func WrapError(sentinel error, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
