package entry

import (
	"github.com/specterops/xf/internal/security"
)

// Source is where entries come from: a local file system or a remote share.
// Paths are in the source's own notation; Join and Rel keep callers out of
// the details.
type Source interface {
	// Root is the path the listing starts from.
	Root() string
	// Label is the human readable form of the root.
	Label() string
	Stat(path string) (*Entry, error)
	ReadDir(path string) ([]*Entry, error)
	ReadFile(path string) ([]byte, error)
	// Security makes one query for the descriptor parts info selects.
	Security(path string, info security.SecurityInformation) (*security.SecurityDescriptor, error)
	Join(elem ...string) string
	// Rel returns path relative to Root, slash separated.
	Rel(path string) string
	Close() error
}
