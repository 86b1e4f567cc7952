// Package domain reduces hostnames, cookie domains and URLs to their
// registrable domain (effective TLD plus one label).
//
// Cookie ownership is decided by comparing registrable domains, never raw
// hostnames: "www.example.com", ".example.com" and "shop.example.com" all
// normalize to "example.com", and "a.b.example.co.uk" normalizes to
// "example.co.uk" because "co.uk" is a public suffix.
//
// Design decision: We use golang.org/x/net/publicsuffix rather than a
// hand-maintained suffix list. The table is compiled into the binary, so
// normalization stays deterministic and never touches the network.
package domain
