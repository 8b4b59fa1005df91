// Package grader evaluates CSS selectors against a parsed HTML document.
//
// Every selector is compiled with cascadia before it is matched. goquery's
// Find silently treats an unparsable selector as matching nothing, which
// would turn a typo in the checks file into a false "missing" result; the
// grader instead aborts the whole run with a *SelectorError.
package grader
