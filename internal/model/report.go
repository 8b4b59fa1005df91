package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Result is the outcome of a single selector.
type Result struct {
	// Selector is the CSS selector as written in the checks file.
	Selector string `json:"selector"`

	// Present is true when at least one node matched.
	Present bool `json:"present"`
}

// Report maps selectors to their presence flag, in evaluation order.
//
// A plain map would lose ordering, and encoding/json sorts map keys by byte
// order anyway, so Report keeps an explicit slice and serializes itself as a
// JSON object whose key order matches Results.
type Report struct {
	// Results holds one entry per distinct selector.
	Results []Result

	// index maps a selector to its position in Results.
	index map[string]int
}

// NewReport creates an empty report with room for n selectors.
func NewReport(n int) *Report {
	return &Report{
		Results: make([]Result, 0, n),
		index:   make(map[string]int, n),
	}
}

// Set records the presence flag for selector. Setting a selector twice
// overwrites the first value and keeps its original position.
func (r *Report) Set(selector string, present bool) {
	if r.index == nil {
		r.reindex()
	}
	if i, ok := r.index[selector]; ok {
		r.Results[i].Present = present
		return
	}
	r.index[selector] = len(r.Results)
	r.Results = append(r.Results, Result{Selector: selector, Present: present})
}

// Get returns the presence flag for selector and whether it was checked.
func (r *Report) Get(selector string) (present, ok bool) {
	if r.index == nil {
		r.reindex()
	}
	i, ok := r.index[selector]
	if !ok {
		return false, false
	}
	return r.Results[i].Present, true
}

// Len returns the number of selectors in the report.
func (r *Report) Len() int {
	return len(r.Results)
}

// Selectors returns the checked selectors in report order.
func (r *Report) Selectors() []string {
	out := make([]string, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Selector
	}
	return out
}

// PresentCount returns how many selectors matched at least one node.
func (r *Report) PresentCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Present {
			n++
		}
	}
	return n
}

// MissingCount returns how many selectors matched nothing.
func (r *Report) MissingCount() int {
	return r.Len() - r.PresentCount()
}

// Missing returns the selectors that matched nothing, in report order.
func (r *Report) Missing() []string {
	var out []string
	for _, res := range r.Results {
		if !res.Present {
			out = append(out, res.Selector)
		}
	}
	return out
}

// AllPresent reports whether every selector matched.
func (r *Report) AllPresent() bool {
	return r.MissingCount() == 0
}

func (r *Report) reindex() {
	r.index = make(map[string]int, len(r.Results))
	for i, res := range r.Results {
		r.index[res.Selector] = i
	}
}

// MarshalJSON encodes the report as a JSON object keyed by selector.
// Keys are written without HTML escaping so selectors such as "div > p"
// stay readable; callers that indent the output must use a json.Encoder
// with SetEscapeHTML(false) to keep it that way.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, res := range r.Results {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(res.Selector)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatBool(res.Present))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of selector to bool, keeping the key
// order of the input.
func (r *Report) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("report must be a JSON object")
	}

	out := NewReport(0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected report key %v", keyTok)
		}
		var present bool
		if err := dec.Decode(&present); err != nil {
			return fmt.Errorf("report value for %q: %w", key, err)
		}
		out.Set(key, present)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = *out
	return nil
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
