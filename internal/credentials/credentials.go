// Package credentials holds the identity xf authenticates with over SMB
// and LDAP.
package credentials

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hashes of the empty password, used for the half of a pair left out.
const (
	emptyLM = "aad3b435b51404eeaad3b435b51404ee"
	emptyNT = "31d6cfe0d16ae931b73c59d7e0c089c0"
)

// Credentials is a user identity with either a password or LM/NT hashes
// for pass-the-hash.
type Credentials struct {
	Domain   string
	Username string
	Password string

	LMHex string
	LMRaw []byte
	NTHex string
	NTRaw []byte
}

// NewCredentials builds credentials from the command line. user may carry
// the domain as "DOMAIN\user" or "user@domain"; an explicit domain wins.
func NewCredentials(domain, user, password, hashes string) (*Credentials, error) {
	name, userDomain := SplitIdentity(user)
	if domain == "" {
		domain = userDomain
	}
	c := &Credentials{Domain: domain, Username: name, Password: password}
	if err := c.SetHashes(hashes); err != nil {
		return nil, err
	}
	return c, nil
}

// SetHashes replaces the hashes with those in an "LM:NT" string. An empty
// string clears them.
func (c *Credentials) SetHashes(hashes string) error {
	c.LMHex, c.LMRaw, c.NTHex, c.NTRaw = "", nil, "", nil
	if hashes == "" {
		return nil
	}

	lm, nt := ParseLMNTHashes(hashes)
	if lm == "" {
		return fmt.Errorf("invalid hashes %q: want LM:NT, :NT or LM:", hashes)
	}
	// Both halves were checked as hex by ParseLMNTHashes.
	c.LMHex, c.NTHex = lm, nt
	c.LMRaw, _ = hex.DecodeString(lm)
	c.NTRaw, _ = hex.DecodeString(nt)
	return nil
}

// IsAnonymous reports whether no username was given.
func (c *Credentials) IsAnonymous() bool {
	return c.Username == ""
}

// HasHashes reports whether an NT hash is available.
func (c *Credentials) HasHashes() bool {
	return len(c.NTRaw) > 0
}

// SplitIdentity splits "DOMAIN\user" and "user@domain" into user and
// domain. A bare name has no domain.
func SplitIdentity(identity string) (user, domain string) {
	if d, u, ok := strings.Cut(identity, `\`); ok {
		return u, d
	}
	if i := strings.LastIndexByte(identity, '@'); i >= 0 {
		return identity[:i], identity[i+1:]
	}
	return identity, ""
}

// ParseLMNTHashes splits "LM:NT", ":NT" or "LM:" into lower-case hex
// hashes, filling a missing half with the empty-password hash. Anything
// else, a bare hash included, yields two empty strings.
func ParseLMNTHashes(hashString string) (lmHash, ntHash string) {
	lm, nt, ok := strings.Cut(strings.ToLower(strings.TrimSpace(hashString)), ":")
	if !ok || (lm == "" && nt == "") {
		return "", ""
	}
	if lm == "" {
		lm = emptyLM
	}
	if nt == "" {
		nt = emptyNT
	}
	if !isHash(lm) || !isHash(nt) {
		return "", ""
	}
	return lm, nt
}

func isHash(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// String names the account without revealing secrets.
func (c *Credentials) String() string {
	return "<Credentials for '" + c.Domain + `\` + c.Username + "'>"
}
