//go:build !unix && !windows

package security

import "fmt"

func queryFile(path string, info SecurityInformation) ([]byte, error) {
	return nil, fmt.Errorf("get file security %s: %w", path, ErrNotSupported)
}
