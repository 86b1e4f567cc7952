// Package main provides the entry point for the cookiemonster CLI.
//
// cookiemonster visits web pages in a headless browser, collects every
// cookie the page sets and classifies each one as first-party, third-party
// or third-party tracking. Results are written to a CSV (or JSON/Markdown)
// report and summarized per tracking service.
//
// Usage:
//
//	cookiemonster scan <url>
//	cookiemonster scan --file urls.txt -r
//
// See --help for all available options.
package main

func main() {
	Execute()
}
