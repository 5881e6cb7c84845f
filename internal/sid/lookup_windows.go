//go:build windows

package sid

import (
	"golang.org/x/sys/windows"
)

// platformLookup asks LookupAccountSid on the local machine, which also
// answers for the domain the machine is joined to.
func platformLookup() Lookup {
	return LookupFunc(func(s string) (string, error) {
		sid, err := windows.StringToSid(s)
		if err != nil {
			return "", ErrUnresolved
		}
		account, domain, _, err := sid.LookupAccount("")
		if err != nil {
			return "", ErrUnresolved
		}
		if domain == "" {
			return account, nil
		}
		return domain + `\` + account, nil
	})
}
