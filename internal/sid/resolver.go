// Package sid provides SID resolution functionality.
package sid

import (
	"errors"
	"io"
	"os/user"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/specterops/xf/internal/logger"
	"github.com/specterops/xf/internal/security"
)

// DefaultTTL is how long a resolved name stays cached.
const DefaultTTL = 10 * time.Minute

// ErrUnresolved is returned by a Lookup that does not know the SID.
var ErrUnresolved = errors.New("SID not resolved")

// Lookup turns a SID string into an account name.
type Lookup interface {
	LookupSID(sid string) (string, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(sid string) (string, error)

// LookupSID calls f(sid).
func (f LookupFunc) LookupSID(sid string) (string, error) {
	return f(sid)
}

// Resolver resolves SIDs to account names. Lookups are tried in order:
// the well-known table, local Unix users and groups for S-1-22 SIDs, the
// platform account database, then any extra lookups given to NewResolver.
type Resolver struct {
	cache   *cache.Cache
	lookups []Lookup
	log     logger.LoggerInterface
}

// NewResolver creates a new SID resolver.
func NewResolver(ttl time.Duration, log logger.LoggerInterface, extra ...Lookup) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	lookups := []Lookup{LookupFunc(wellKnown), LookupFunc(unixAccount)}
	if p := platformLookup(); p != nil {
		lookups = append(lookups, p)
	}
	lookups = append(lookups, extra...)

	return &Resolver{
		cache:   cache.New(ttl, 2*ttl),
		lookups: lookups,
		log:     log,
	}
}

// ResolveSIDs resolves a set of SIDs into the cache. SIDs nothing can
// resolve are cached as themselves.
func (r *Resolver) ResolveSIDs(sids []string) {
	for _, s := range sids {
		r.GetSID(s)
	}
}

// GetSID returns the resolved name for a SID, or the SID itself.
func (r *Resolver) GetSID(sid string) string {
	if name, ok := r.cache.Get(sid); ok {
		return name.(string)
	}

	name := sid
	for _, l := range r.lookups {
		n, err := l.LookupSID(sid)
		if err != nil {
			if r.log != nil && !errors.Is(err, ErrUnresolved) {
				r.log.Debug("[sid] " + sid + ": " + err.Error())
			}
			continue
		}
		if n != "" {
			name = n
			break
		}
	}

	r.cache.Set(sid, name, cache.DefaultExpiration)
	return name
}

// Name resolves a parsed SID. A nil SID renders as "-".
func (r *Resolver) Name(s *security.SID) string {
	if s == nil {
		return "-"
	}
	return r.GetSID(s.String())
}

// CacheSID manually adds a SID to the cache.
func (r *Resolver) CacheSID(sid, name string) {
	r.cache.Set(sid, name, cache.DefaultExpiration)
}

// GetCacheSize returns the number of cached SIDs.
func (r *Resolver) GetCacheSize() int {
	return r.cache.ItemCount()
}

// Close closes the resolver and releases resources.
func (r *Resolver) Close() error {
	var errs []error
	for _, l := range r.lookups {
		if c, ok := l.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	r.cache.Flush()
	return errors.Join(errs...)
}

func wellKnown(s string) (string, error) {
	if name := security.WellKnownName(s); name != "" {
		return name, nil
	}
	return "", ErrUnresolved
}

// unixAccount resolves the S-1-22-1-N and S-1-22-2-N SIDs Samba and the
// local POSIX descriptor use for uids and gids.
func unixAccount(s string) (string, error) {
	parsed, err := security.ParseSIDString(s)
	if err != nil {
		return "", ErrUnresolved
	}
	id, group, ok := parsed.UnixID()
	if !ok {
		return "", ErrUnresolved
	}

	key := strconv.FormatUint(uint64(id), 10)
	if group {
		g, err := user.LookupGroupId(key)
		if err != nil {
			return "", ErrUnresolved
		}
		return g.Name, nil
	}
	u, err := user.LookupId(key)
	if err != nil {
		return "", ErrUnresolved
	}
	return u.Username, nil
}
