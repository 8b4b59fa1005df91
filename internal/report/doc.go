// Package report writes grading results.
//
// JSONWriter produces the default output: one JSON object mapping each
// selector to true or false, keys in sorted order, indented with four
// spaces. MarkdownWriter and TextWriter are human-oriented alternatives.
// Each writer can also render a history diff between two runs.
//
// Writers implement the Writer interface, so MultiWriter can fan a run out
// to several destinations.
package report
