package origins

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAllowedOrigin_DefaultPolicy(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{name: "subdomain of mcpcentral.io", origin: "https://foo.mcpcentral.io", want: "https://foo.mcpcentral.io"},
		{name: "exact mcpcentral.io", origin: "https://mcpcentral.io", want: "https://mcpcentral.io"},
		{name: "exact buildaipod.com", origin: "https://buildaipod.com", want: "https://buildaipod.com"},
		{name: "exact demos.build", origin: "https://demos.build", want: "https://demos.build"},
		{name: "nested subdomain", origin: "https://a.b.demos.build", want: "https://a.b.demos.build"},
		{name: "subdomain of buildaipod.com", origin: "https://app.buildaipod.com", want: "https://app.buildaipod.com"},
		{name: "http scheme subdomain", origin: "http://foo.mcpcentral.io", want: "http://foo.mcpcentral.io"},
		{name: "unrelated origin", origin: "https://evil.com", want: Wildcard},
		{name: "missing origin", origin: "", want: Wildcard},
		{name: "suffix without dot boundary", origin: "https://evilmcpcentral.io", want: Wildcard},
		{name: "http exact is not exact", origin: "http://mcpcentral.io", want: Wildcard},
		{name: "no case folding", origin: "https://FOO.MCPCENTRAL.IO", want: Wildcard},
		{name: "trailing slash not normalized", origin: "https://mcpcentral.io/", want: Wildcard},
		{name: "port breaks suffix", origin: "https://foo.mcpcentral.io:8443", want: Wildcard},
		{name: "null origin", origin: "null", want: Wildcard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := policy.AllowedOrigin(tt.origin); got != tt.want {
				t.Errorf("AllowedOrigin(%q) = %q, want %q", tt.origin, got, tt.want)
			}
		})
	}
}

func TestAllows_EmptyOrigin(t *testing.T) {
	t.Parallel()
	if DefaultPolicy().Allows("") {
		t.Error("Expected empty origin to be rejected")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		yaml        string
		expectError string
		validate    func(*testing.T, *Policy)
	}{
		{
			name: "exact and suffix",
			yaml: "exact:\n  - https://example.com\nsuffixes:\n  - .example.com\n",
			validate: func(t *testing.T, p *Policy) {
				if got := p.AllowedOrigin("https://api.example.com"); got != "https://api.example.com" {
					t.Errorf("Expected subdomain echoed, got %q", got)
				}
				if got := p.AllowedOrigin("https://mcpcentral.io"); got != Wildcard {
					t.Errorf("Expected default list replaced, got %q", got)
				}
			},
		},
		{
			name: "suffixes only",
			yaml: "suffixes: [.internal.test]\n",
			validate: func(t *testing.T, p *Policy) {
				if len(p.Exact) != 0 || len(p.Suffixes) != 1 {
					t.Errorf("Unexpected policy %+v", p)
				}
			},
		},
		{name: "suffix missing leading dot", yaml: "suffixes: [example.com]\n", expectError: "domain_suffix"},
		{name: "suffix with scheme", yaml: "suffixes: [.https://example.com]\n", expectError: "domain_suffix"},
		{name: "empty suffix", yaml: "suffixes: ['']\n", expectError: "required"},
		{name: "exact not a url", yaml: "exact: [example.com]\n", expectError: "url"},
		{name: "unknown key", yaml: "origins: [https://example.com]\n", expectError: "decode"},
		{name: "empty lists", yaml: "exact: []\nsuffixes: []\n", expectError: "no origins"},
		{name: "empty document", yaml: "", expectError: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := Parse([]byte(tt.yaml))
			if tt.expectError != "" {
				if err == nil {
					t.Fatalf("Expected error containing %q, got policy %+v", tt.expectError, p)
				}
				if !strings.Contains(err.Error(), tt.expectError) {
					t.Errorf("Expected error containing %q, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses default policy", func(t *testing.T) {
		t.Parallel()
		p, err := LoadFile("")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got := p.AllowedOrigin("https://demos.build"); got != "https://demos.build" {
			t.Errorf("Expected default policy, got %q", got)
		}
	})

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "origins.yaml")
		if err := os.WriteFile(path, []byte("exact:\n  - https://localhost:3000\n"), 0o600); err != nil {
			t.Fatalf("write file: %v", err)
		}
		p, err := LoadFile(path)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got := p.AllowedOrigin("https://localhost:3000"); got != "https://localhost:3000" {
			t.Errorf("Expected exact match, got %q", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil {
			t.Fatal("Expected error for missing file")
		}
	})
}
