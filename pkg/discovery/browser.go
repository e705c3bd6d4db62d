package discovery

import (
	"context"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to browse on.
	// Empty string means all interfaces.
	Interface string
}

// Browser searches the local network for advertised brokers.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates an mDNS browser.
func NewBrowser(config BrowserConfig) *Browser {
	return &Browser{config: config}
}

// Browse searches for brokers until the context ends. Announcements
// from multiple interfaces are aggregated by instance name, so each
// broker is emitted once with all its addresses merged over time.
func (b *Browser) Browse(ctx context.Context) (<-chan *BrokerService, error) {
	out := make(chan *BrokerService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(out)

		services := make(map[string]*BrokerService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToBroker(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}

				services[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindFirst returns the first broker discovered, or ErrNotFound when
// browsing ends without a result. Bound the search with the context.
func (b *Browser) FindFirst(ctx context.Context) (*BrokerService, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	select {
	case svc, ok := <-results:
		if !ok {
			return nil, ErrNotFound
		}
		return svc, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// browserOptions returns zeroconf client options based on config.
func (b *Browser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToBroker converts a zeroconf entry to a BrokerService.
// Returns nil for entries with unusable TXT records.
func entryToBroker(entry *zeroconf.ServiceEntry) *BrokerService {
	txt := StringsToTXTRecords(entry.Text)
	info, err := DecodeBrokerTXT(txt)
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &BrokerService{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
		BrokerInfo:   *info,
	}
}

// mergeAddresses adds new addresses to the existing list, skipping
// duplicates.
func mergeAddresses(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range incoming {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses drops the addresses carried by a goodbye entry.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
