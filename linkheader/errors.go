package linkheader

import (
	"errors"
	"fmt"
)

// ErrMalformed indicates a Link header value does not follow the grammar.
var ErrMalformed = errors.New("linkheader: malformed value")

func malformed(offset int, format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrMalformed, offset, fmt.Sprintf(format, args...))
}
