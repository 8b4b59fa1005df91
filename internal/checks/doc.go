// Package checks loads the list of CSS selectors a document is graded against.
//
// A checks file is a JSON array of selector strings:
//
//	["h1", "p", "a[href]", "div > img[alt]"]
//
// The list is kept in file order by Load. Callers sort it with Sorted before
// evaluation so that report keys come out in a deterministic order.
package checks
