package smb

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Error categories
const (
	ErrorCategoryProtocol = "PROTOCOL"
	ErrorCategoryAuth     = "AUTH"
	ErrorCategoryNetwork  = "NETWORK"
	ErrorCategoryUnknown  = "UNKNOWN"
)

// Common errors
var (
	ErrNotConnected                   = errors.New("not connected to SMB server")
	ErrShareNotSet                    = errors.New("share not set")
	ErrConnectionFailed               = errors.New("failed to connect to SMB server")
	ErrAuthFailed                     = errors.New("authentication failed")
	ErrInvalidTarget                  = errors.New("invalid SMB target")
	ErrSecurityDescriptorNotSupported = errors.New("security descriptor query not supported")
)

// ErrorClassification contains information about a classified SMB error.
type ErrorClassification struct {
	Category string
	Message  string
}

// errorPatterns maps server and dialer messages to a classification. The
// first pattern found in the lower-cased error wins, so the specific
// messages come before the generic "network".
var errorPatterns = []struct {
	needles []string
	class   ErrorClassification
}{
	{[]string{"not supported", "dialect", "unsupported"},
		ErrorClassification{ErrorCategoryProtocol, "SMB dialect or feature not supported by server"}},
	{[]string{"logon failure", "invalid username", "invalid password", "authentication"},
		ErrorClassification{ErrorCategoryAuth, "Invalid username or password"}},
	{[]string{"access denied", "access is denied"},
		ErrorClassification{ErrorCategoryAuth, "Access denied - insufficient privileges"}},
	{[]string{"account disabled"},
		ErrorClassification{ErrorCategoryAuth, "Account is disabled"}},
	{[]string{"locked out"},
		ErrorClassification{ErrorCategoryAuth, "Account is locked out"}},
	{[]string{"password expired"},
		ErrorClassification{ErrorCategoryAuth, "Password has expired"}},
	{[]string{"bad network name", "share not found"},
		ErrorClassification{ErrorCategoryNetwork, "Share or network name not found"}},
	{[]string{"network", "connection refused", "unreachable", "timeout", "timed out"},
		ErrorClassification{ErrorCategoryNetwork, "Network connectivity issue"}},
}

// ClassifyError sorts an SMB error into auth, network or protocol trouble
// for reporting. Typed errors are checked before the message.
func ClassifyError(err error) ErrorClassification {
	if err == nil {
		return ErrorClassification{ErrorCategoryUnknown, "no error"}
	}

	var netErr net.Error
	switch {
	case errors.Is(err, ErrAuthFailed):
		// The message carries the server's reason
	case errors.Is(err, ErrSecurityDescriptorNotSupported):
		return ErrorClassification{ErrorCategoryProtocol, "Server does not return security descriptors"}
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return ErrorClassification{ErrorCategoryNetwork, "Network connectivity issue"}
	}

	msg := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		for _, needle := range p.needles {
			if strings.Contains(msg, needle) {
				return p.class
			}
		}
	}
	return ErrorClassification{ErrorCategoryUnknown, err.Error()}
}
