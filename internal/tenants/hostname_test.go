package tenants

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storehubhq/storehub-backend/pkg/config"
)

func newTestParser() *Parser {
	return NewParser(config.TenancyConfig{
		DefaultRoutingKey: "demo",
		LocalHostnames:    []string{"localhost", "127.0.0.1", "0.0.0.0"},
	})
}

func TestParse(t *testing.T) {
	parser := newTestParser()

	cases := []struct {
		name string
		host string
		want RoutingKey
	}{
		{
			name: "subdomain under base domain",
			host: "acme.storehub.app",
			want: RoutingKey{Hostname: "acme.storehub.app", Subdomain: "acme"},
		},
		{
			name: "uppercase and port stripped",
			host: "ACME.Storehub.App:8080",
			want: RoutingKey{Hostname: "acme.storehub.app", Subdomain: "acme"},
		},
		{
			name: "trailing dot stripped",
			host: "acme.storehub.app.",
			want: RoutingKey{Hostname: "acme.storehub.app", Subdomain: "acme"},
		},
		{
			name: "custom domain keeps first label as candidate",
			host: "www.acme-shoes.com",
			want: RoutingKey{Hostname: "www.acme-shoes.com", Subdomain: "www"},
		},
		{
			name: "single label has no subdomain",
			host: "intranet",
			want: RoutingKey{Hostname: "intranet", Subdomain: ""},
		},
		{
			name: "localhost maps to default key",
			host: "localhost:3000",
			want: RoutingKey{Hostname: "localhost", Subdomain: "demo"},
		},
		{
			name: "loopback maps to default key",
			host: "127.0.0.1",
			want: RoutingKey{Hostname: "127.0.0.1", Subdomain: "demo"},
		},
		{
			name: "surrounding whitespace trimmed",
			host: "  acme.storehub.app  ",
			want: RoutingKey{Hostname: "acme.storehub.app", Subdomain: "acme"},
		},
		{
			name: "empty host",
			host: "",
			want: RoutingKey{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parser.Parse(tc.host))
		})
	}
}
