package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
	"github.com/kinoplay/kinoplay/constant"
	"github.com/kinoplay/kinoplay/log"
)

// ErrNotDiscovered is returned when no server answered before the deadline.
var ErrNotDiscovered = errors.New("no kinohub server found on the local network")

// Discover browses mDNS for service and returns the host:port of the first
// instance that answers. ctx bounds the search.
func Discover(ctx context.Context, service string) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("mdns resolver: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, service, constant.DiscoveryDomain, entries); err != nil {
		return "", fmt.Errorf("mdns browse: %w", err)
	}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return "", ErrNotDiscovered
			}
			if host, ok := entryAddress(entry); ok {
				log.Infof("discovered %s at %s", entry.Instance, host)
				return host, nil
			}
		case <-ctx.Done():
			return "", ErrNotDiscovered
		}
	}
}

// entryAddress picks a dialable address, preferring IPv4.
func entryAddress(entry *zeroconf.ServiceEntry) (string, bool) {
	if entry == nil || entry.Port == 0 {
		return "", false
	}

	port := strconv.Itoa(entry.Port)
	switch {
	case len(entry.AddrIPv4) > 0:
		return net.JoinHostPort(entry.AddrIPv4[0].String(), port), true
	case len(entry.AddrIPv6) > 0:
		return net.JoinHostPort(entry.AddrIPv6[0].String(), port), true
	case entry.HostName != "":
		return net.JoinHostPort(strings.TrimSuffix(entry.HostName, "."), port), true
	default:
		return "", false
	}
}
