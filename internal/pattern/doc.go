// Package pattern loads and queries the tracking cookie pattern catalog.
//
// The catalog maps a tracking service name to an ordered list of rules.
// Each rule is a three-element entry [matchToken, friendlyName, ruleMetadata];
// a cookie matches a rule when matchToken is a substring of the cookie name.
//
// Order matters: services are scanned in the order they appear in the source
// file and rules in the order they appear within a service, and the first
// match wins. Go maps do not preserve order, so the loader walks the
// gopkg.in/yaml.v3 node tree instead of decoding into a map. Because JSON is
// a subset of YAML 1.2 the same loader reads both formats.
package pattern
