// Package smb provides SMB session management for remote listings.
package smb

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/medianexapp/go-smb2"
	"github.com/specterops/xf/internal/credentials"
	"github.com/specterops/xf/internal/logger"
	"github.com/specterops/xf/internal/security"
)

// FileInfo holds information about a file or directory on a share.
type FileInfo struct {
	Name         string
	IsDir        bool
	Size         int64
	CreatedTime  time.Time
	ModifiedTime time.Time
	Attributes   uint32
}

// Session represents an SMB session with at most one mounted share.
type Session struct {
	log         logger.LoggerInterface
	host        string
	port        int
	timeout     time.Duration
	credentials *credentials.Credentials

	conn      net.Conn
	session   *smb2.Session
	share     *smb2.Share
	shareName string
	connected bool

	mu sync.Mutex
}

// NewSession creates a new Session. host must already be an address the
// local resolver or dialer understands.
func NewSession(
	host string,
	port int,
	timeout time.Duration,
	creds *credentials.Credentials,
	log logger.LoggerInterface,
) *Session {
	if creds == nil {
		creds = &credentials.Credentials{}
	}
	return &Session{
		log:         log,
		host:        host,
		port:        port,
		timeout:     timeout,
		credentials: creds,
	}
}

// Connect establishes a connection to the SMB server and authenticates.
func (s *Session) Connect(ctx context.Context) error {
	s.log.Debug(fmt.Sprintf("Dialing SMB on '%s' port %d", s.host, s.port))

	address := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", address)
	if err != nil {
		s.log.Debug(fmt.Sprintf("TCP connect to '%s' failed: %v", address, err))
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	dialer := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     s.credentials.Username,
			Password: s.credentials.Password,
			Domain:   s.credentials.Domain,
			Hash:     s.credentials.NTRaw,
		},
	}

	session, err := dialer.DialConn(dialCtx, conn, address)
	if err != nil {
		classification := ClassifyError(err)
		s.log.Debug(fmt.Sprintf("[%s] Authentication failed: %s", classification.Category, classification.Message))
		conn.Close()
		return fmt.Errorf("%w: [%s] %s", ErrAuthFailed, classification.Category, classification.Message)
	}

	s.mu.Lock()
	s.conn = conn
	s.session = session
	s.connected = true
	s.mu.Unlock()

	s.log.Debug(fmt.Sprintf("Authenticated to '%s' as %s", s.host, s.credentials))
	return nil
}

// Close unmounts the share, logs off and closes the connection.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.share != nil {
		s.share.Umount()
		s.share = nil
	}
	if s.session != nil {
		s.session.Logoff()
		s.session = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connected = false
	s.log.Debug(fmt.Sprintf("Closed SMB session to '%s'", s.host))
	return nil
}

// IsConnected returns whether the session is connected.
func (s *Session) IsConnected() bool {
	_, err := s.live()
	return err == nil
}

// live returns the authenticated session, or ErrNotConnected.
func (s *Session) live() (*smb2.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected || s.session == nil {
		return nil, ErrNotConnected
	}
	return s.session, nil
}

// ListShares lists the share names on the server.
func (s *Session) ListShares() ([]string, error) {
	session, err := s.live()
	if err != nil {
		return nil, err
	}
	names, err := session.ListSharenames()
	if err != nil {
		s.log.Debug(fmt.Sprintf("Share enumeration on '%s' failed: %v", s.host, err))
		return nil, fmt.Errorf("list shares on %s: %w", s.host, err)
	}
	return names, nil
}

// Mount mounts shareName, replacing any share mounted before. The tree
// connect runs without holding s.mu.
func (s *Session) Mount(shareName string) error {
	session, err := s.live()
	if err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.share
	s.share, s.shareName = nil, ""
	s.mu.Unlock()
	if previous != nil {
		previous.Umount()
	}

	share, err := session.Mount(shareName)
	if err != nil {
		s.log.Debug(fmt.Sprintf("Tree connect to '%s' failed: %v", shareName, err))
		return fmt.Errorf("mount %s: %w", shareName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		// Closed while mounting.
		share.Umount()
		return ErrNotConnected
	}
	s.share, s.shareName = share, shareName
	return nil
}

// ShareName returns the mounted share name.
func (s *Session) ShareName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shareName
}

func (s *Session) mounted() (*smb2.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.share == nil || !s.connected {
		return nil, ErrShareNotSet
	}
	return s.share, nil
}

// ReadDir lists a directory of the mounted share. dir is relative to the
// share root and may use either separator.
func (s *Session) ReadDir(dir string) ([]FileInfo, error) {
	share, err := s.mounted()
	if err != nil {
		return nil, err
	}

	fullPath := sharePath(dir)
	entries, err := share.ReadDir(fullPath)
	if err != nil {
		s.log.Debug(fmt.Sprintf("Directory query on '%s' failed: %v", fullPath, err))
		return nil, err
	}

	contents := make([]FileInfo, 0, len(entries))
	for _, info := range entries {
		contents = append(contents, fileInfo(info))
	}
	return contents, nil
}

// Stat returns information about one path of the mounted share.
func (s *Session) Stat(name string) (FileInfo, error) {
	share, err := s.mounted()
	if err != nil {
		return FileInfo{}, err
	}
	info, err := share.Stat(sharePath(name))
	if err != nil {
		return FileInfo{}, err
	}
	return fileInfo(info), nil
}

// ReadFile reads a whole file of the mounted share.
func (s *Session) ReadFile(name string) ([]byte, error) {
	share, err := s.mounted()
	if err != nil {
		return nil, err
	}
	return share.ReadFile(sharePath(name))
}

// SecurityInfo returns the self-relative security descriptor of a path,
// limited to the parts selected by info. A single query is made.
func (s *Session) SecurityInfo(name string, info security.SecurityInformation) ([]byte, error) {
	share, err := s.mounted()
	if err != nil {
		return nil, err
	}

	fullPath := sharePath(name)
	sdBytes, err := share.SecurityInfoRaw(fullPath, smb2.SecurityInformationRequestFlags(info))
	if err != nil {
		s.log.Debug(fmt.Sprintf("Security query on '%s' failed: %v", fullPath, err))
		return nil, fmt.Errorf("query security of %s: %w", fullPath, err)
	}
	if len(sdBytes) == 0 {
		return nil, fmt.Errorf("%w: empty descriptor for %s", ErrSecurityDescriptorNotSupported, fullPath)
	}
	return sdBytes, nil
}

func fileInfo(info os.FileInfo) FileInfo {
	fi := FileInfo{
		Name:         info.Name(),
		IsDir:        info.IsDir(),
		Size:         info.Size(),
		ModifiedTime: info.ModTime(),
	}
	if fileStat, ok := info.(*smb2.FileStat); ok {
		fi.CreatedTime = fileStat.CreationTime
		fi.Attributes = fileStat.FileAttributes
	}
	return fi
}

// sharePath converts a share-relative path to the form go-smb2 expects:
// backslash separated, no leading separator, "." for the root.
func sharePath(p string) string {
	p = strings.ReplaceAll(p, "/", "\\")
	p = strings.Trim(p, "\\")
	if p == "" {
		return "."
	}
	return p
}
