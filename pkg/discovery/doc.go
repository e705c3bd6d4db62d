// Package discovery finds vehicle signal brokers on the local network
// via mDNS/DNS-SD.
//
// Brokers advertise the service type "_vsslink._tcp" in the "local."
// domain. The TXT record carries the broker name, version, and whether
// the endpoint expects TLS. Browsing aggregates announcements from
// multiple network interfaces into one entry per instance name.
//
// Discovery is optional: clients configured with an explicit broker
// address never touch this package.
package discovery
