package tor

import (
	"encoding/base32"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionSuffix is the suffix of every onion host.
	OnionSuffix = ".onion"

	// OnionV3Version is the version byte embedded in v3 addresses.
	OnionV3Version = 0x03
)

var (
	onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)
	onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)
)

// checksumPrefix is defined by the Tor rendezvous specification.
var checksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether host (without port) is in the .onion TLD.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(host, ".")), OnionSuffix)
}

// ValidateHost checks that an onion host is a well-formed v3 address.
// Subdomains ("www.<addr>.onion") are allowed; only the last label before
// .onion is validated.
func ValidateHost(host string) error {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	labels := strings.Split(strings.TrimSuffix(host, OnionSuffix), ".")
	addr := labels[len(labels)-1] + OnionSuffix

	if IsValidV3Address(addr) {
		return nil
	}
	if onionV2Pattern.MatchString(addr) {
		return ErrV2AddressDeprecated
	}
	return ErrInvalidOnionAddress
}

// IsValidV3Address checks format and checksum of a v3 onion address.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(address, OnionSuffix)))
	if err != nil || len(decoded) != 35 {
		return false
	}

	// pubkey (32) | checksum (2) | version (1)
	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != OnionV3Version {
		return false
	}
	want := v3Checksum(pubkey, version)
	return checksum[0] == want[0] && checksum[1] == want[1]
}

// v3Checksum returns SHA3-256(".onion checksum" || pubkey || version)[:2].
func v3Checksum(pubkey []byte, version byte) []byte {
	h := sha3.New256()
	h.Write(checksumPrefix)
	h.Write(pubkey)
	h.Write([]byte{version})
	return h.Sum(nil)[:2]
}
