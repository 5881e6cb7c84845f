package smb

import (
	"fmt"
	"strings"
)

// DefaultPort is the SMB port used when a target names none.
const DefaultPort = 445

// Target is a parsed remote location.
type Target struct {
	Host  string
	Share string
	// Path is relative to the share root, forward-slash separated, without
	// a leading separator. Empty means the share root.
	Path string
}

// IsTarget reports whether s looks like a remote location rather than a
// local path.
func IsTarget(s string) bool {
	return strings.HasPrefix(s, `\\`) || strings.HasPrefix(s, "//") ||
		strings.HasPrefix(strings.ToLower(s), "smb://")
}

// ParseTarget parses \\host\share\path, //host/share/path or
// smb://host/share/path.
func ParseTarget(s string) (Target, error) {
	var rest string
	switch {
	case strings.HasPrefix(strings.ToLower(s), "smb://"):
		rest = s[len("smb://"):]
	case strings.HasPrefix(s, `\\`), strings.HasPrefix(s, "//"):
		rest = s[2:]
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}

	parts := strings.FieldsFunc(rest, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) < 2 {
		return Target{}, fmt.Errorf("%w: %q needs a host and a share", ErrInvalidTarget, s)
	}
	return Target{
		Host:  parts[0],
		Share: parts[1],
		Path:  strings.Join(parts[2:], "/"),
	}, nil
}

// ParseHost returns the host of s, which may be a bare host name or any
// target form. Share and path are ignored.
func ParseHost(s string) (string, error) {
	rest := s
	switch {
	case strings.HasPrefix(strings.ToLower(s), "smb://"):
		rest = s[len("smb://"):]
	case strings.HasPrefix(s, `\\`), strings.HasPrefix(s, "//"):
		rest = s[2:]
	}

	parts := strings.FieldsFunc(rest, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: %q needs a host", ErrInvalidTarget, s)
	}
	return parts[0], nil
}

// String returns the UNC form of the target.
func (t Target) String() string {
	s := `\\` + t.Host + `\` + t.Share
	if t.Path != "" {
		s += `\` + strings.ReplaceAll(t.Path, "/", `\`)
	}
	return s
}
