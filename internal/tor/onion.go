package tor

import (
	"encoding/base32"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// OnionSuffix is the suffix of every onion service host.
const OnionSuffix = ".onion"

// onionV3Version is the version byte of v3 onion addresses.
const onionV3Version = 0x03

// onionV3Pattern matches 56 base32 characters followed by .onion.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// checksumPrefix is hashed in front of the key when computing the checksum.
var checksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether host (optionally with subdomains) is an
// onion service.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(host, ".")), OnionSuffix)
}

// IsValidV3Address checks format and checksum of a v3 onion address.
// Subdomains are allowed: "www.<56 chars>.onion" is valid.
func IsValidV3Address(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	address := strings.Join(labels[len(labels)-2:], ".")

	if !onionV3Pattern.MatchString(address) {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(address, OnionSuffix)))
	if err != nil || len(decoded) != 35 {
		return false
	}

	// 32-byte ed25519 key, 2-byte checksum, version
	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != onionV3Version {
		return false
	}

	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum returns SHA3-256(".onion checksum" || pubkey || version)[:2].
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}

// CheckTarget validates an onion target URL. Clearnet URLs always pass.
// Onion URLs need routed to be true and a valid v3 address.
func CheckTarget(rawURL string, routed bool) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable URLs fail in the visit instead
		return nil
	}
	host := u.Hostname()
	if !IsOnionHost(host) {
		return nil
	}
	if !IsValidV3Address(host) {
		return fmt.Errorf("%w: %s", ErrInvalidOnionAddress, host)
	}
	if !routed {
		return fmt.Errorf("%w: %s", ErrOnionRequiresTor, host)
	}
	return nil
}
