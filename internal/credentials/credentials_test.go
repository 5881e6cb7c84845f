package credentials

import "testing"

const (
	lm = "aad3b435b51404eeaad3b435b51404ee"
	nt = "8846f7eaee8fb117ad06bdd830b7586c"
)

func TestParseLMNTHashes(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantLM string
		wantNT string
	}{
		{"full pair", lm + ":" + nt, lm, nt},
		{"NT only", ":" + nt, lm, nt},
		{"LM only", lm + ":", lm, "31d6cfe0d16ae931b73c59d7e0c089c0"},
		{"upper case", "AAD3B435B51404EEAAD3B435B51404EE:" + nt, lm, nt},
		{"no separator", nt, "", ""},
		{"garbage", "not-a-hash", "", ""},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLM, gotNT := ParseLMNTHashes(tt.input)
			if gotLM != tt.wantLM || gotNT != tt.wantNT {
				t.Errorf("ParseLMNTHashes(%q) = %q, %q; want %q, %q", tt.input, gotLM, gotNT, tt.wantLM, tt.wantNT)
			}
		})
	}
}

func TestNewCredentials(t *testing.T) {
	tests := []struct {
		name       string
		domain     string
		user       string
		wantDomain string
		wantUser   string
	}{
		{"down-level name", "", `CORP\alice`, "CORP", "alice"},
		{"UPN", "", "alice@corp.local", "corp.local", "alice"},
		{"explicit domain wins", "OTHER", `CORP\alice`, "OTHER", "alice"},
		{"bare name", "", "alice", "", "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCredentials(tt.domain, tt.user, "pw", "")
			if err != nil {
				t.Fatalf("NewCredentials: %v", err)
			}
			if c.Domain != tt.wantDomain || c.Username != tt.wantUser {
				t.Errorf("got %s\\%s, want %s\\%s", c.Domain, c.Username, tt.wantDomain, tt.wantUser)
			}
		})
	}
}

func TestCredentialsHashes(t *testing.T) {
	c, err := NewCredentials("CORP", "alice", "", ":"+nt)
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}
	if !c.HasHashes() || len(c.NTRaw) != 16 {
		t.Errorf("Expected a 16 byte NT hash, got %x", c.NTRaw)
	}

	if _, err := NewCredentials("CORP", "alice", "", "zz"); err == nil {
		t.Error("Expected an error for invalid hashes")
	}

	anon, _ := NewCredentials("", "", "", "")
	if !anon.IsAnonymous() {
		t.Error("Expected anonymous credentials")
	}
}
