// Package tor routes URL mode fetches through the Tor network.
//
// Two setups are supported: an external SOCKS5 proxy (--tor-proxy) and an
// embedded Tor daemon started with tornago (--tor). Either way the result is
// a Client whose Transport can be plugged into an http.Client.
//
// Hosts ending in .onion can only be reached this way, so the package also
// validates v3 onion addresses before any request is made.
package tor
