package entry

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/specterops/xf/internal/credentials"
	"github.com/specterops/xf/internal/logger"
	"github.com/specterops/xf/internal/perms"
	"github.com/specterops/xf/internal/security"
	"github.com/specterops/xf/internal/smb"
	"github.com/specterops/xf/internal/utils"
)

// RemoteShare is the part of an SMB session a source needs.
type RemoteShare interface {
	ReadDir(dir string) ([]smb.FileInfo, error)
	Stat(name string) (smb.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	SecurityInfo(name string, info security.SecurityInformation) ([]byte, error)
}

// SMBOptions configures OpenSMB.
type SMBOptions struct {
	Credentials *credentials.Credentials
	Port        int
	Timeout     time.Duration
	// Nameserver, when set, resolves the host with this DNS server first.
	Nameserver string
}

// SMBSource reads entries from a mounted share. Paths are share relative
// and slash separated.
type SMBSource struct {
	share  RemoteShare
	target smb.Target
	close  func() error
}

// NewSMBSource wraps an already mounted share.
func NewSMBSource(share RemoteShare, target smb.Target) *SMBSource {
	return &SMBSource{share: share, target: target}
}

// Dial resolves host and returns an authenticated session with no share
// mounted.
func Dial(ctx context.Context, host string, opts SMBOptions, log logger.LoggerInterface) (*smb.Session, error) {
	if opts.Port == 0 {
		opts.Port = smb.DefaultPort
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	addr := host
	if opts.Nameserver != "" {
		resolved, err := utils.DNSResolve(ctx, host, opts.Nameserver, opts.Timeout)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", host, err)
		}
		log.Debug(fmt.Sprintf("Resolved '%s' to '%s' via %s", host, resolved, opts.Nameserver))
		addr = resolved
	}

	session := smb.NewSession(addr, opts.Port, opts.Timeout, opts.Credentials, log)
	if err := session.Connect(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// OpenSMB connects to target, mounts its share and returns the source.
func OpenSMB(ctx context.Context, target smb.Target, opts SMBOptions, log logger.LoggerInterface) (*SMBSource, error) {
	session, err := Dial(ctx, target.Host, opts, log)
	if err != nil {
		return nil, err
	}
	if err := session.Mount(target.Share); err != nil {
		session.Close()
		return nil, err
	}

	src := NewSMBSource(session, target)
	src.close = session.Close
	return src, nil
}

func (s *SMBSource) Root() string  { return s.target.Path }
func (s *SMBSource) Label() string { return s.target.String() }

func (s *SMBSource) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func (s *SMBSource) Join(elem ...string) string { return path.Join(elem...) }

func (s *SMBSource) Rel(p string) string {
	root := s.target.Path
	switch {
	case root == "":
		if p == "" {
			return "."
		}
		return p
	case p == root:
		return "."
	case strings.HasPrefix(p, root+"/"):
		return p[len(root)+1:]
	}
	return p
}

func (s *SMBSource) Stat(p string) (*Entry, error) {
	info, err := s.share.Stat(p)
	if err != nil {
		return nil, err
	}
	e := s.newEntry(p, info)
	if p == "" {
		e.Name = s.target.Share
		e.Kind = Dir
	} else {
		e.Name = path.Base(p)
	}
	return e, nil
}

func (s *SMBSource) ReadDir(dir string) ([]*Entry, error) {
	infos, err := s.share.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(infos))
	for _, info := range infos {
		if info.Name == "." || info.Name == ".." {
			continue
		}
		entries = append(entries, s.newEntry(path.Join(dir, info.Name), info))
	}
	return entries, nil
}

func (s *SMBSource) ReadFile(p string) ([]byte, error) {
	return s.share.ReadFile(p)
}

func (s *SMBSource) Security(p string, info security.SecurityInformation) (*security.SecurityDescriptor, error) {
	raw, err := s.share.SecurityInfo(p, info)
	if err != nil {
		return nil, err
	}
	sd, err := security.ParseSecurityDescriptor(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return sd, nil
}

func (s *SMBSource) newEntry(p string, info smb.FileInfo) *Entry {
	e := &Entry{
		Name:     info.Name,
		Path:     p,
		Rel:      s.Rel(p),
		Kind:     File,
		Size:     info.Size,
		Modified: info.ModifiedTime,
		Created:  info.CreatedTime,
		Source:   s,
	}
	attrs := info.Attributes
	if info.IsDir {
		e.Kind = Dir
		attrs |= perms.FILE_ATTRIBUTE_DIRECTORY
	}
	e.Perms = perms.Windows(attrs, !info.IsDir && perms.ExecutableName(info.Name))
	return e
}
