// Package tor routes cookiemonster's traffic through a SOCKS5 proxy.
//
// A Client wraps a proxy address. It verifies that the address speaks
// SOCKS5, hands Chrome a proxy URL, and hands the WHOIS resolver a
// golang.org/x/net/proxy dialer. EmbeddedTor starts a private Tor daemon
// through tornago when --tor is given, so no external Tor installation is
// needed.
//
// Onion targets can only be reached over Tor. CheckTarget rejects onion
// URLs that are not routed through a proxy, along with malformed v3 addresses.
package tor
