// Package utils provides utility functions for xf.
package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"
)

var errNoAnswer = errors.New("no A record")

// DNSResolve turns a host name into an address for dialing. Literal
// addresses are returned as given. With a nameserver the A record is asked
// for over UDP and then TCP; the system resolver is the fallback when the
// nameserver answers without one.
func DNSResolve(ctx context.Context, host, nameserver string, timeout time.Duration) (string, error) {
	if _, err := netip.ParseAddr(host); err == nil {
		return host, nil
	}
	if nameserver == "" {
		return lookupSystem(ctx, host, timeout)
	}

	server := nameserver
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	var lastErr error
	for _, transport := range []string{"udp", "tcp"} {
		ip, err := queryA(ctx, host, server, transport, timeout)
		if err == nil {
			return ip, nil
		}
		lastErr = err
	}
	if !errors.Is(lastErr, errNoAnswer) {
		return "", fmt.Errorf("resolve %s via %s: %w", host, server, lastErr)
	}
	return lookupSystem(ctx, host, timeout)
}

func queryA(ctx context.Context, host, server, transport string, timeout time.Duration) (string, error) {
	client := &dns.Client{Net: transport, Timeout: timeout}
	msg := new(dns.Msg).SetQuestion(dns.Fqdn(host), dns.TypeA)

	resp, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return "", err
	}
	if resp.Rcode == dns.RcodeSuccess {
		for _, rr := range resp.Answer {
			if a, ok := rr.(*dns.A); ok {
				return a.A.String(), nil
			}
		}
	}
	return "", errNoAnswer
}

// lookupSystem asks the system resolver, taking an IPv4 address when the
// host has one.
func lookupSystem(ctx context.Context, host string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("resolve %s: no addresses", host)
	}
	for _, addr := range addrs {
		if addr.Unmap().Is4() {
			return addr.Unmap().String(), nil
		}
	}
	return addrs[0].String(), nil
}
