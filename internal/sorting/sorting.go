// Package sorting orders entries of a listing.
package sorting

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/specterops/xf/internal/entry"
)

// Strategy compares two entries, returning a negative number when a sorts
// before b, zero when they tie and a positive number otherwise.
type Strategy interface {
	Compare(a, b *entry.Entry) int
}

// Func adapts a plain function to a Strategy.
type Func func(a, b *entry.Entry) int

func (f Func) Compare(a, b *entry.Entry) int { return f(a, b) }

// Sort orders entries in place. Equal entries keep their relative order.
func Sort(entries []*entry.Entry, s Strategy) {
	slices.SortStableFunc(entries, s.Compare)
}

// Natural compares names as humans read them: runs of digits compare by
// value, everything else byte by byte.
var Natural Strategy = Func(func(a, b *entry.Entry) int {
	return NaturalCompare(a.Name, b.Name)
})

// Name compares full paths as plain strings.
var Name Strategy = Func(func(a, b *entry.Entry) int {
	return strings.Compare(a.Path, b.Path)
})

// None keeps the order the source returned.
var None Strategy = Func(func(a, b *entry.Entry) int { return 0 })

// NaturalCompare compares a and b in natural order. Names that only differ
// in leading zeros fall back to byte order so the result is total.
func NaturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			si, sj := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			if c := compareDigits(a[si:i], b[sj:j]); c != 0 {
				return c
			}
			continue
		}
		if a[i] != b[j] {
			return cmp.Compare(a[i], b[j])
		}
		i++
		j++
	}

	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// compareDigits compares two digit runs by value without parsing them, so
// runs of any length work.
func compareDigits(x, y string) int {
	x = strings.TrimLeft(x, "0")
	y = strings.TrimLeft(y, "0")
	if len(x) != len(y) {
		return cmp.Compare(len(x), len(y))
	}
	return strings.Compare(x, y)
}

// Extension puts entries without an extension first, then orders by
// extension. Ties go to then.
func Extension(then Strategy) Strategy {
	return Func(func(a, b *entry.Entry) int {
		ea, eb := a.Extension(), b.Extension()
		switch {
		case ea == "" && eb != "":
			return -1
		case ea != "" && eb == "":
			return 1
		}
		if c := strings.Compare(ea, eb); c != 0 {
			return c
		}
		return then.Compare(a, b)
	})
}

// byModified orders entries with a modification time before those without
// and compares the times with key. Ties go to then.
func byModified(then Strategy, key func(time.Time) int64) Strategy {
	return Func(func(a, b *entry.Entry) int {
		za, zb := a.Modified.IsZero(), b.Modified.IsZero()
		switch {
		case !za && zb:
			return -1
		case za && !zb:
			return 1
		case !za && !zb:
			if c := cmp.Compare(key(a.Modified), key(b.Modified)); c != 0 {
				return c
			}
		}
		return then.Compare(a, b)
	})
}

// Date compares the local calendar day of the modification time.
func Date(then Strategy) Strategy {
	return byModified(then, func(t time.Time) int64 {
		y, m, d := t.Local().Date()
		return int64(y)*10000 + int64(m)*100 + int64(d)
	})
}

// Time compares the local time of day of the modification time.
func Time(then Strategy) Strategy {
	return byModified(then, func(t time.Time) int64 {
		t = t.Local()
		h, m, s := t.Clock()
		return (int64(h*3600+m*60+s))*int64(time.Second) + int64(t.Nanosecond())
	})
}

// DateTime compares the modification instant.
func DateTime(then Strategy) Strategy {
	return byModified(then, func(t time.Time) int64 { return t.UnixNano() })
}

// Size puts larger entries first. Ties go to then.
func Size(then Strategy) Strategy {
	return Func(func(a, b *entry.Entry) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return then.Compare(a, b)
	})
}

// DirsFirst puts directories before files and orders each with s.
func DirsFirst(s Strategy) Strategy {
	return Func(func(a, b *entry.Entry) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return s.Compare(a, b)
	})
}

// HiddenFirst puts hidden entries before visible ones and orders each
// with s.
func HiddenFirst(s Strategy) Strategy {
	return Func(func(a, b *entry.Entry) int {
		ha, hb := a.IsHidden(), b.IsHidden()
		if ha != hb {
			if ha {
				return -1
			}
			return 1
		}
		return s.Compare(a, b)
	})
}

// Reverse inverts s.
func Reverse(s Strategy) Strategy {
	return Func(func(a, b *entry.Entry) int { return s.Compare(b, a) })
}

// Matcher selects the entries of a group.
type Matcher func(*entry.Entry) bool

// GroupRule pairs a matcher with the strategy used inside its group.
type GroupRule struct {
	Match Matcher
	Sort  Strategy
}

// Group sorts entries by the first rule that matches them, in rule order.
// Matched entries come before unmatched ones. Unmatched entries are sorted
// by fallback.
func Group(fallback Strategy, rules ...GroupRule) Strategy {
	index := func(e *entry.Entry) int {
		for i, r := range rules {
			if r.Match(e) {
				return i
			}
		}
		return -1
	}

	return Func(func(a, b *entry.Entry) int {
		ia, ib := index(a), index(b)
		switch {
		case ia >= 0 && ib >= 0:
			if ia != ib {
				return cmp.Compare(ia, ib)
			}
			return rules[ia].Sort.Compare(a, b)
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		}
		return fallback.Compare(a, b)
	})
}

// Key names a base strategy on the command line.
type Key int

const (
	KeyNatural Key = iota
	KeyName
	KeyExtension
	KeyDate
	KeyTime
	KeyDateTime
	KeySize
	KeyNone
)

// KeyNames maps each Key to its accepted spellings.
var KeyNames = map[Key][]string{
	KeyNatural:   {"natural"},
	KeyName:      {"name"},
	KeyExtension: {"extension", "ext"},
	KeyDate:      {"date"},
	KeyTime:      {"time"},
	KeyDateTime:  {"datetime"},
	KeySize:      {"size"},
	KeyNone:      {"none"},
}

// Strategy returns the strategy for k. Tie-breaking variants fall back to
// natural order.
func (k Key) Strategy() Strategy {
	switch k {
	case KeyName:
		return Name
	case KeyExtension:
		return Extension(Natural)
	case KeyDate:
		return Date(Natural)
	case KeyTime:
		return Time(Natural)
	case KeyDateTime:
		return DateTime(Natural)
	case KeySize:
		return Size(Natural)
	case KeyNone:
		return None
	}
	return Natural
}

// ParseKey looks a key up by name.
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, names := range KeyNames {
		if slices.Contains(names, name) {
			return k, nil
		}
	}
	return KeyNatural, fmt.Errorf("unknown sort %q", name)
}

// Options assembles the strategy used by a listing.
type Options struct {
	Key         Key
	Reverse     bool
	DirsFirst   bool
	HiddenFirst bool
}

// Build returns the strategy for o. Reverse applies to the base strategy
// only, so directories stay on top.
func (o Options) Build() Strategy {
	s := o.Key.Strategy()
	if o.Reverse {
		s = Reverse(s)
	}
	if o.HiddenFirst {
		s = HiddenFirst(s)
	}
	if o.DirsFirst {
		s = DirsFirst(s)
	}
	return s
}
