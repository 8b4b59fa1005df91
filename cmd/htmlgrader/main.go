// Package main provides the entry point for the htmlgrader CLI.
//
// htmlgrader checks whether an HTML document, read from a file or fetched
// from a URL, contains the elements described by a list of CSS selectors,
// and prints a JSON object mapping each selector to true or false.
//
// Usage:
//
//	htmlgrader --checks checks.json --file index.html
//	htmlgrader --checks checks.json --url https://example.com/
//
// See --help for all available options.
package main

func main() {
	Execute()
}
