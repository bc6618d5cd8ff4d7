package scope

import "testing"

func TestClassifierIsInternal(t *testing.T) {
	t.Parallel()

	t.Run("with allowed domain", func(t *testing.T) {
		t.Parallel()

		c := NewClassifier("example.com", "https://example.com")

		tests := []struct {
			name string
			url  string
			want bool
		}{
			{"exact domain", "https://example.com/page", true},
			{"subdomain", "https://sub.example.com/page", true},
			{"deep subdomain", "https://a.b.example.com/", true},
			{"different domain", "https://notexample.com/", false},
			{"suffix trick domain", "https://example.com.evil.com/", false},
			{"domain with port", "https://example.com:8443/admin", true},
			{"archive host", "https://web.archive.org/web/2019/http://old.example.com/", true},
			{"archive host regardless of target", "https://web.archive.org/web/2019/http://unrelated.org/", true},
			{"empty host", "/relative/path", false},
			{"mailto-like", "mailto:info@example.com", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				if got := c.IsInternal(tt.url); got != tt.want {
					t.Errorf("IsInternal(%q) = %v, want %v", tt.url, got, tt.want)
				}
			})
		}
	})

	t.Run("without allowed domain falls back to seed host", func(t *testing.T) {
		t.Parallel()

		c := NewClassifier("", "http://old.example.com/index.html")

		if !c.IsInternal("http://old.example.com/contact") {
			t.Error("expected seed host to be internal")
		}
		if c.IsInternal("http://sub.old.example.com/") {
			t.Error("expected subdomain to be external without allowed domain")
		}
		if !c.IsInternal("http://web.archive.org/web/2020/http://anything.net/") {
			t.Error("expected archive host to be internal without allowed domain")
		}
	})
}

func TestValidDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"simple domain", "Example.COM", "example.com", true},
		{"surrounding whitespace", "  example.com ", "example.com", true},
		{"trailing dot", "example.com.", "example.com", true},
		{"trailing port", "example.com:8080", "example.com", true},
		{"localhost allowed", "localhost", "localhost", true},
		{"localhost with port", "localhost:8000", "localhost", true},
		{"empty", "", "", false},
		{"no dot", "example", "", false},
		{"contains slash", "example.com/path", "", false},
		{"contains backslash", `example\.com`, "", false},
		{"contains at", "user@example.com", "", false},
		{"contains space", "exa mple.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ValidDomain(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ValidDomain(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ValidDomain(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
