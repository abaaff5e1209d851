package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

const (
	hostPortHint  = "expected format: host:port"
	p2pAddrHint   = "expected host:port or /{ip4,ip6,dns,dns4,dns6}/<host>/tcp/<port>[/p2p/<peerID>]"
	maxHostLength = 253
)

// Address is a validated network address. The original spelling is kept
// so that a document round-trips unchanged.
type Address struct {
	raw   string
	host  string
	port  int
	peer  string
	multi bool
}

// ParseHostPort parses a host:port address. The host must be an IP
// literal or a syntactically valid DNS name; no resolution is done.
func ParseHostPort(s string) (Address, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		var ae *net.AddrError
		if errors.As(err, &ae) {
			return Address{}, errors.New(ae.Err)
		}
		return Address{}, err
	}
	if err := validateHost(host); err != nil {
		return Address{}, err
	}
	port, err := parsePort(portStr)
	if err != nil {
		return Address{}, err
	}
	return Address{raw: s, host: host, port: port}, nil
}

// ParseAddress parses a peer-facing address given either as host:port or
// as a TCP multiaddr, optionally terminated by a /p2p/<peerID> component.
func ParseAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, "/") {
		return ParseHostPort(s)
	}

	ma, err := multiaddr.NewMultiaddr(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid multiaddr: %v", err)
	}

	protos := ma.Protocols()
	if len(protos) < 2 || len(protos) > 3 {
		return Address{}, fmt.Errorf("multiaddr must have a host, a tcp port and an optional peer id")
	}

	hostCode := protos[0].Code
	switch hostCode {
	case multiaddr.P_IP4, multiaddr.P_IP6, multiaddr.P_DNS, multiaddr.P_DNS4, multiaddr.P_DNS6:
	default:
		return Address{}, fmt.Errorf("unsupported host protocol /%s", protos[0].Name)
	}
	if protos[1].Code != multiaddr.P_TCP {
		return Address{}, fmt.Errorf("missing /tcp/<port> component")
	}
	if len(protos) == 3 && protos[2].Code != multiaddr.P_P2P {
		return Address{}, fmt.Errorf("unexpected /%s component", protos[2].Name)
	}

	host, err := ma.ValueForProtocol(hostCode)
	if err != nil {
		return Address{}, err
	}
	if err := validateHost(host); err != nil {
		return Address{}, err
	}
	portStr, err := ma.ValueForProtocol(multiaddr.P_TCP)
	if err != nil {
		return Address{}, err
	}
	port, err := parsePort(portStr)
	if err != nil {
		return Address{}, err
	}

	addr := Address{raw: s, host: host, port: port, multi: true}
	if len(protos) == 3 {
		if addr.peer, err = ma.ValueForProtocol(multiaddr.P_P2P); err != nil {
			return Address{}, err
		}
	}
	return addr, nil
}

// String returns the address as it was written.
func (a Address) String() string { return a.raw }

// IsZero reports whether a holds no address.
func (a Address) IsZero() bool { return a.raw == "" }

// Host returns the host part.
func (a Address) Host() string { return a.host }

// Port returns the TCP port.
func (a Address) Port() int { return a.port }

// IsIP reports whether the host is an IP literal.
func (a Address) IsIP() bool { return net.ParseIP(a.host) != nil }

// PeerID returns the /p2p/ component of a multiaddr address, if any.
func (a Address) PeerID() string { return a.peer }

// HostPort returns the address in host:port form.
func (a Address) HostPort() string {
	return net.JoinHostPort(a.host, strconv.Itoa(a.port))
}

// Multiaddr returns the address as a multiaddr. host:port addresses are
// converted to /ip4, /ip6 or /dns forms.
func (a Address) Multiaddr() (multiaddr.Multiaddr, error) {
	if a.IsZero() {
		return nil, fmt.Errorf("empty address")
	}
	if a.multi {
		return multiaddr.NewMultiaddr(a.raw)
	}
	if ip := net.ParseIP(a.host); ip != nil {
		return manet.FromNetAddr(&net.TCPAddr{IP: ip, Port: a.port})
	}
	return multiaddr.NewMultiaddr(fmt.Sprintf("/dns/%s/tcp/%d", a.host, a.port))
}

// MarshalYAML implements yaml.Marshaler.
func (a Address) MarshalYAML() (interface{}, error) {
	return a.raw, nil
}

func parsePort(s string) (int, error) {
	// digits only; Atoi alone would take "+80"
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, fmt.Errorf("port must be a number between 1 and 65535; got %q", s)
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("port must be a number between 1 and 65535; got %q", s)
	}
	return port, nil
}

func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if len(host) > maxHostLength {
		return fmt.Errorf("host name longer than %d characters", maxHostLength)
	}
	labels := strings.Split(host, ".")
	for _, label := range labels {
		if !validLabel(label) {
			return fmt.Errorf("invalid host %q", host)
		}
	}
	// a numeric top-level label is a mistyped IP, not a name
	if isNumeric(labels[len(labels)-1]) {
		return fmt.Errorf("invalid IP address %q", host)
	}
	return nil
}

func validLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
