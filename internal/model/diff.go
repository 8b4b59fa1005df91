package model

import "slices"

// Diff describes how the report of a source changed between two runs.
type Diff struct {
	// Location is the compared document source.
	Location string `json:"location"`

	// Previous and Current are the compared runs, oldest first.
	Previous *Run `json:"previous"`
	Current  *Run `json:"current"`

	// NowPresent lists selectors that were missing and now match.
	NowPresent []string `json:"now_present"`

	// NowMissing lists selectors that matched and now do not.
	NowMissing []string `json:"now_missing"`

	// Added lists selectors checked only in the current run.
	Added []string `json:"added"`

	// Removed lists selectors checked only in the previous run.
	Removed []string `json:"removed"`

	// DocumentChanged is true when the document hash differs.
	DocumentChanged bool `json:"document_changed"`
}

// NewDiff compares two runs. All selector lists are sorted.
func NewDiff(previous, current *Run) *Diff {
	d := &Diff{
		Location:        current.Location,
		Previous:        previous,
		Current:         current,
		NowPresent:      []string{},
		NowMissing:      []string{},
		Added:           []string{},
		Removed:         []string{},
		DocumentChanged: previous.DocumentHash != current.DocumentHash,
	}

	for _, res := range current.Report.Results {
		before, ok := previous.Report.Get(res.Selector)
		switch {
		case !ok:
			d.Added = append(d.Added, res.Selector)
		case !before && res.Present:
			d.NowPresent = append(d.NowPresent, res.Selector)
		case before && !res.Present:
			d.NowMissing = append(d.NowMissing, res.Selector)
		}
	}
	for _, sel := range previous.Report.Selectors() {
		if _, ok := current.Report.Get(sel); !ok {
			d.Removed = append(d.Removed, sel)
		}
	}

	slices.Sort(d.NowPresent)
	slices.Sort(d.NowMissing)
	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	return d
}

// HasChanges reports whether any selector changed state or membership.
func (d *Diff) HasChanges() bool {
	return len(d.NowPresent) > 0 || len(d.NowMissing) > 0 ||
		len(d.Added) > 0 || len(d.Removed) > 0
}
