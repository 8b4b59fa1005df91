// Package pipeline runs a check as a sequence of steps.
//
// A check loads the selector list and the document, parses the document,
// grades it, writes the report and optionally records the run in the
// history database. Each stage is a Step that reads and fills the shared
// State. The pipeline stops at the first failing step, so a failed run
// never emits a partial report.
package pipeline
