package credential

import (
	"testing"

	"github.com/seiran-lab/domainscan/internal/model"
)

func TestExtractFromText(t *testing.T) {
	t.Parallel()

	t.Run("username assignment", func(t *testing.T) {
		t.Parallel()

		got := ExtractFromText(`username = "alice123"`, model.TechniqueCrawlerHTML, model.SourceHTML)
		if len(got) != 1 {
			t.Fatalf("expected 1 credential, got %d: %v", len(got), got)
		}
		if got[0].Kind != model.KindUser || got[0].Value != "alice123" {
			t.Errorf("expected (user, alice123), got (%s, %s)", got[0].Kind, got[0].Value)
		}
		if got[0].Technique != model.TechniqueCrawlerHTML {
			t.Errorf("expected technique attached, got %q", got[0].Technique)
		}
	})

	t.Run("key family variants", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			text string
			kind model.CredentialKind
			want string
		}{
			{"login", `login = 'bob99'`, model.KindUser, "bob99"},
			{"user with suffix", `user_name = "carol7"`, model.KindUser, "carol7"},
			{"password", `password = "hunter22"`, model.KindPassword, "hunter22"},
			{"pwd", `pwd='p4ssw0rd'`, model.KindPassword, "p4ssw0rd"},
			{"api_key", `api_key = "abcdef123456"`, model.KindToken, "abcdef123456"},
			{"apikey", `apiKey="ZYXWVU987654"`, model.KindToken, "ZYXWVU987654"},
			{"token", `TOKEN = "deadbeefcafe"`, model.KindToken, "deadbeefcafe"},
			{"secret", `secret_value = "s3cr3tv4lu3"`, model.KindToken, "s3cr3tv4lu3"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				got := ExtractFromText(tt.text, model.TechniqueJSStatic, model.SourceJS)
				if len(got) != 1 {
					t.Fatalf("expected 1 credential, got %d: %v", len(got), got)
				}
				if got[0].Kind != tt.kind || got[0].Value != tt.want {
					t.Errorf("got (%s, %s), want (%s, %s)", got[0].Kind, got[0].Value, tt.kind, tt.want)
				}
			})
		}
	})

	t.Run("minimum value lengths", func(t *testing.T) {
		t.Parallel()

		if got := ExtractFromText(`user = "ab"`, "t", "c"); len(got) != 0 {
			t.Errorf("expected 2-char username rejected, got %v", got)
		}
		if got := ExtractFromText(`token = "short12"`, "t", "c"); len(got) != 0 {
			t.Errorf("expected 7-char token rejected, got %v", got)
		}
		if got := ExtractFromText(`token = "longenough1"`, "t", "c"); len(got) != 1 {
			t.Errorf("expected 11-char token accepted, got %v", got)
		}
	})

	t.Run("scan order and first-wins dedup", func(t *testing.T) {
		t.Parallel()

		text := `
			token = "aaaabbbbcccc"
			user = "alice123"
			password = "hunter22"
			user = "alice123"
			user = "dave5"
		`
		got := ExtractFromText(text, "t", "c")
		want := []struct {
			kind  model.CredentialKind
			value string
		}{
			{model.KindUser, "alice123"},
			{model.KindUser, "dave5"},
			{model.KindPassword, "hunter22"},
			{model.KindToken, "aaaabbbbcccc"},
		}

		if len(got) != len(want) {
			t.Fatalf("expected %d credentials, got %d: %v", len(want), len(got), got)
		}
		for i, w := range want {
			if got[i].Kind != w.kind || got[i].Value != w.value {
				t.Errorf("position %d: got (%s, %s), want (%s, %s)", i, got[i].Kind, got[i].Value, w.kind, w.value)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		if got := ExtractFromText("", "t", "c"); got != nil {
			t.Errorf("expected nil for empty input, got %v", got)
		}
	})

	t.Run("values with spaces or quotes are not matched", func(t *testing.T) {
		t.Parallel()

		if got := ExtractFromText(`password = "has space"`, "t", "c"); len(got) != 0 {
			t.Errorf("expected no match for value with space, got %v", got)
		}
	})
}

func TestExtractFromJSON(t *testing.T) {
	t.Parallel()

	t.Run("flat object", func(t *testing.T) {
		t.Parallel()

		got := ExtractFromJSON(`{"password": "xyz"}`, model.TechniqueScrapingJSON, "fetch/xhr")
		if len(got) != 1 {
			t.Fatalf("expected 1 credential, got %d: %v", len(got), got)
		}
		if got[0].Kind != model.KindPassword || got[0].Value != "xyz" {
			t.Errorf("got (%s, %s), want (password, xyz)", got[0].Kind, got[0].Value)
		}
	})

	t.Run("case-insensitive keys", func(t *testing.T) {
		t.Parallel()

		got := ExtractFromJSON(`{"USERNAME": "alice", "ApiKey": "tok123"}`, "t", "c")
		if len(got) != 2 {
			t.Fatalf("expected 2 credentials, got %d: %v", len(got), got)
		}
	})

	t.Run("nested structures", func(t *testing.T) {
		t.Parallel()

		raw := `{
			"data": {
				"accounts": [
					{"user": "alice", "password": "pw-one"},
					{"user": "bob", "password": "pw-two"}
				]
			},
			"token": "global-token"
		}`
		got := ExtractFromJSON(raw, "t", "c")
		if len(got) != 5 {
			t.Fatalf("expected 5 credentials, got %d: %v", len(got), got)
		}
		// Document order is preserved.
		if got[0].Value != "alice" || got[1].Value != "pw-one" || got[2].Value != "bob" {
			t.Errorf("unexpected order: %v", got)
		}
	})

	t.Run("recurses past a matched key holding a structure", func(t *testing.T) {
		t.Parallel()

		// "secret" maps to an object, not a string: no emission at that
		// level, but the nested password must still be found.
		got := ExtractFromJSON(`{"secret": {"password": "deep"}}`, "t", "c")
		if len(got) != 1 || got[0].Value != "deep" {
			t.Fatalf("expected nested password, got %v", got)
		}
	})

	t.Run("non-string scalar values are ignored", func(t *testing.T) {
		t.Parallel()

		got := ExtractFromJSON(`{"token": 12345678, "password": true}`, "t", "c")
		if len(got) != 0 {
			t.Errorf("expected no credentials for non-string values, got %v", got)
		}
	})

	t.Run("top-level array", func(t *testing.T) {
		t.Parallel()

		got := ExtractFromJSON(`[{"login": "eve"}, {"pwd": "qwerty"}]`, "t", "c")
		if len(got) != 2 {
			t.Fatalf("expected 2 credentials, got %d: %v", len(got), got)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		if got := ExtractFromJSON(`{"broken":`, "t", "c"); got != nil {
			t.Errorf("expected nil for invalid JSON, got %v", got)
		}
	})
}
