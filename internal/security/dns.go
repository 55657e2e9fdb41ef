package security

import (
	"context"
	"fmt"
	"net"
	"time"
)

const resolveTimeout = 5 * time.Second

// Resolver looks up the addresses of a host.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// ResolveHost resolves host to its IP addresses. IP literals resolve to themselves.
func ResolveHost(ctx context.Context, resolver Resolver, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{ip.String()}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	ips, err := resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host %s: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("failed to resolve host %s: no addresses", host)
	}
	return ips, nil
}
