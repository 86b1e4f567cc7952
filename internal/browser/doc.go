// Package browser visits pages in a real Chrome instance and captures the
// cookies set during the visit.
//
// Every visit launches a fresh headless browser so no cookies leak between
// URLs. Chrome is started with third-party cookie blocking disabled, since
// third-party cookies are what the classifier needs to see.
package browser
