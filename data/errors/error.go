package errors

import (
	"fmt"
)

func newError(err error, format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if err != nil {
		return fmt.Errorf("cncmaps: %s: %w", text, err)
	}

	return fmt.Errorf("cncmaps: %s", text)
}
