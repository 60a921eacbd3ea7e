package target

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// Endpoint is the echo server every worker connects to.
type Endpoint struct {
	Host string
	Port uint16
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

// Resolver is the subset of *net.Resolver used for hostname lookups.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Resolve returns the address workers dial. Hostnames are looked up once
// here so no worker pays for DNS inside the timed section.
func (e Endpoint) Resolve(ctx context.Context, r Resolver, forceIPv4, forceIPv6 bool) (netip.AddrPort, error) {
	addr, err := lookupAddr(ctx, r, e.Host, forceIPv4, forceIPv6)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("resolve %s: %w", e.Host, err)
	}
	return netip.AddrPortFrom(addr, e.Port), nil
}

// lookupAddr parses host and returns an IP address that meets the address family criteria
func lookupAddr(ctx context.Context, r Resolver, host string, forceIPv4, forceIPv6 bool) (netip.Addr, error) {
	parsedIP, err := netip.ParseAddr(host)

	if err != nil {
		if r == nil {
			r = net.DefaultResolver
		}
		records, err := r.LookupHost(ctx, host)
		if err != nil {
			return netip.Addr{}, errors.New("could not resolve host")
		}

		for _, record := range records {
			ip, err := netip.ParseAddr(record)
			if err != nil {
				continue
			}
			if (forceIPv4 && !ip.Is4()) || (forceIPv6 && !ip.Is6()) {
				continue
			}
			parsedIP = ip
			break
		}
	}

	parsedIP = parsedIP.Unmap()
	switch {
	case !parsedIP.IsValid():
		return parsedIP, errors.New("could not resolve host")
	case forceIPv4 && !parsedIP.Is4():
		return parsedIP, errors.New("IPv4 is forced and host is not IPv4")
	case forceIPv6 && !parsedIP.Is6():
		return parsedIP, errors.New("IPv6 is forced and host is not IPv6")
	}

	return parsedIP, nil
}
