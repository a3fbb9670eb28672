package tenants

import (
	"net"
	"strings"

	"github.com/storehubhq/storehub-backend/pkg/config"
)

// RoutingKey is the normalized output of parsing a Host header.
type RoutingKey struct {
	// Hostname is the full host, lowercased with any port and trailing dot
	// stripped. It doubles as the cache key and the custom-domain candidate.
	Hostname string
	// Subdomain is the subdomain candidate, empty when the host has a single
	// label. Local hosts map to the configured default routing key.
	Subdomain string
}

// Parser turns raw Host header values into routing keys. It performs no I/O
// and never fails; a key that matches nothing is the resolver's problem.
type Parser struct {
	defaultKey string
	localHosts map[string]struct{}
}

// NewParser builds a parser from tenancy configuration.
func NewParser(cfg config.TenancyConfig) *Parser {
	local := make(map[string]struct{}, len(cfg.LocalHostnames))
	for _, host := range cfg.LocalHostnames {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			local[host] = struct{}{}
		}
	}
	return &Parser{
		defaultKey: strings.ToLower(strings.TrimSpace(cfg.DefaultRoutingKey)),
		localHosts: local,
	}
}

// Parse normalizes a raw Host header value.
func (p *Parser) Parse(rawHost string) RoutingKey {
	host := strings.ToLower(strings.TrimSpace(rawHost))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")

	if _, ok := p.localHosts[host]; ok {
		return RoutingKey{Hostname: host, Subdomain: p.defaultKey}
	}

	key := RoutingKey{Hostname: host}
	if first, rest, found := strings.Cut(host, "."); found && rest != "" {
		key.Subdomain = first
	}
	return key
}
