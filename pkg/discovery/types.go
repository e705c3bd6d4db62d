package discovery

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// mDNS service parameters for broker discovery.
const (
	// ServiceType is the DNS-SD service type brokers advertise.
	ServiceType = "_vsslink._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second
)

// TXT record keys.
const (
	// TXTKeyName is the broker implementation name.
	TXTKeyName = "nm"

	// TXTKeyVersion is the broker version string.
	TXTKeyVersion = "vn"

	// TXTKeyTLS is "1" when the endpoint expects TLS.
	TXTKeyTLS = "tls"
)

// Discovery errors.
var (
	ErrNotFound        = errors.New("no broker found")
	ErrMissingRequired = errors.New("missing required TXT record")
)

// BrokerInfo is the payload carried in a broker's TXT record.
type BrokerInfo struct {
	// Name is the broker implementation name.
	Name string

	// Version is the broker version string.
	Version string

	// TLS indicates the endpoint expects a TLS handshake.
	TLS bool
}

// BrokerService describes one discovered broker.
type BrokerService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the advertised hostname.
	Host string

	// Port is the broker port.
	Port uint16

	// Addresses are the resolved IP addresses, aggregated over all
	// interfaces the broker announced on.
	Addresses []string

	BrokerInfo
}

// Address returns a dialable host:port for the broker, preferring the
// first resolved address over the hostname.
func (s *BrokerService) Address() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, fmt.Sprintf("%d", s.Port))
}
