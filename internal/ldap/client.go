// Package ldap resolves domain SIDs against an Active Directory domain
// controller.
package ldap

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/specterops/xf/internal/credentials"
)

// ErrNotFound is returned when no directory object carries the SID.
var ErrNotFound = errors.New("no object with that SID")

var errNotConnected = errors.New("LDAP client not connected")

// ClientOptions describes how to reach and bind to a domain controller.
type ClientOptions struct {
	Domain   string
	DCIP     string
	Username string
	Password string
	Hashes   string // LM:NT
	UseLDAPS bool
	Timeout  time.Duration
}

// OptionsFromCredentials reuses the SMB identity for the directory bind.
func OptionsFromCredentials(creds *credentials.Credentials, dcIP string, useLDAPS bool) *ClientOptions {
	opts := &ClientOptions{
		Domain:   creds.Domain,
		DCIP:     dcIP,
		Username: creds.Username,
		Password: creds.Password,
		UseLDAPS: useLDAPS,
	}
	if creds.HasHashes() {
		opts.Hashes = creds.LMHex + ":" + creds.NTHex
	}
	return opts
}

// Client is a bound connection to one domain controller. It implements
// sid.Lookup.
type Client struct {
	opts   ClientOptions
	baseDN string
	ntHash string
	conn   *ldap.Conn
}

// NewClient checks opts and prepares a client. Nothing is dialed until
// Connect.
func NewClient(opts *ClientOptions) (*Client, error) {
	switch {
	case opts.DCIP == "":
		return nil, errors.New("no domain controller given")
	case opts.Domain == "":
		return nil, errors.New("no domain given")
	}

	c := &Client{opts: *opts, baseDN: domainToBaseDN(opts.Domain)}
	if c.opts.Timeout <= 0 {
		c.opts.Timeout = 5 * time.Second
	}
	if _, nt, ok := strings.Cut(opts.Hashes, ":"); ok {
		c.ntHash = nt
	}
	return c, nil
}

// url is ldaps://dc:636 or ldap://dc:389.
func (c *Client) url() string {
	if c.opts.UseLDAPS {
		return "ldaps://" + net.JoinHostPort(c.opts.DCIP, "636")
	}
	return "ldap://" + net.JoinHostPort(c.opts.DCIP, "389")
}

// Connect dials the domain controller and binds. An NT hash selects an
// NTLM bind, a username without password an unauthenticated one.
func (c *Client) Connect() error {
	conn, err := ldap.DialURL(c.url(),
		ldap.DialWithDialer(&net.Dialer{Timeout: c.opts.Timeout}),
		// Domain controllers commonly present self-signed certificates.
		ldap.DialWithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
	)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.url(), err)
	}
	conn.SetTimeout(c.opts.Timeout)

	switch {
	case c.ntHash != "":
		err = conn.NTLMBindWithHash(c.opts.Domain, c.opts.Username, c.ntHash)
	case c.opts.Password == "":
		err = conn.UnauthenticatedBind(c.opts.Username)
	default:
		err = conn.Bind(c.opts.Username+"@"+c.opts.Domain, c.opts.Password)
	}
	if err != nil {
		conn.Close()
		return fmt.Errorf("bind to %s as %s: %w", c.url(), c.opts.Username, err)
	}

	c.conn = conn
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// LookupSID returns DOMAIN\sAMAccountName for the object whose objectSid is
// sid. Active Directory accepts the string form of a SID in the filter.
func (c *Client) LookupSID(sid string) (string, error) {
	if c.conn == nil {
		return "", errNotConnected
	}

	req := ldap.NewSearchRequest(
		c.baseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		1, int(c.opts.Timeout/time.Second), false,
		SIDFilter(sid),
		[]string{"sAMAccountName", "name"},
		nil,
	)
	res, err := c.conn.Search(req)
	if err != nil {
		return "", fmt.Errorf("search %s: %w", sid, err)
	}

	for _, e := range res.Entries {
		for _, attr := range req.Attributes {
			if name := e.GetAttributeValue(attr); name != "" {
				return c.netbiosDomain() + `\` + name, nil
			}
		}
	}
	return "", fmt.Errorf("%s: %w", sid, ErrNotFound)
}

// SIDFilter returns the search filter matching an object by SID.
func SIDFilter(sid string) string {
	return "(objectSid=" + ldap.EscapeFilter(sid) + ")"
}

// netbiosDomain guesses the NetBIOS name as the first DNS label.
func (c *Client) netbiosDomain() string {
	label, _, _ := strings.Cut(c.opts.Domain, ".")
	return strings.ToUpper(label)
}

// domainToBaseDN turns "corp.local" into "DC=corp,DC=local".
func domainToBaseDN(domain string) string {
	labels := strings.Split(domain, ".")
	for i, l := range labels {
		labels[i] = "DC=" + l
	}
	return strings.Join(labels, ",")
}
