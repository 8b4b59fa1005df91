// Package model defines the data structures shared by the grader, the report
// writers and the history database.
//
// This package contains the following main types:
//   - Report: ordered selector to presence mapping produced by one check
//   - Run: a Report together with where the document came from and when
//   - Diff: the change between two runs of the same source
//
// The models live in their own package so that grader, report and database
// can all use them without import cycles.
package model
