package checks

import (
	"errors"
	"fmt"
)

// DefaultFile is the checks file used when --checks is not given.
const DefaultFile = "checks.json"

// ErrMalformedChecks is returned when the checks file is not a JSON array of
// strings.
var ErrMalformedChecks = errors.New("malformed checks file")

// MissingFileError reports a required input file that does not exist.
// Its message is the diagnostic printed before the process exits.
type MissingFileError struct {
	Path string
}

// Error implements the error interface.
func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s does not exist. Exiting.", e.Path)
}
