package checks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
)

// List is an ordered sequence of selectors.
type List []string

// AssertFileExists returns path unchanged if it exists, or a
// *MissingFileError otherwise. It is shared by the checks file and the HTML
// file validation so both fail with the same diagnostic.
func AssertFileExists(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &MissingFileError{Path: path}
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return path, nil
}

// Load reads a JSON array of selectors from path. The returned list keeps
// file order.
func Load(path string) (List, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided checks path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("failed to read checks file: %w", err)
	}
	list, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Parse decodes a JSON array of selectors.
func Parse(data []byte) (List, error) {
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedChecks, err)
	}
	if list == nil {
		// "null" decodes without error but is not an array.
		return nil, fmt.Errorf("%w: expected a JSON array of strings", ErrMalformedChecks)
	}
	return list, nil
}

// Sorted returns a lexicographically sorted copy of the list with duplicates
// removed. The receiver is not modified.
func (l List) Sorted() List {
	out := slices.Clone(l)
	slices.Sort(out)
	return slices.Compact(out)
}
