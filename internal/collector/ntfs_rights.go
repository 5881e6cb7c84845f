package collector

import (
	"fmt"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/logger"
	"github.com/specterops/xf/internal/security"
)

// CollectNTFSRights queries the security descriptor of e once and stores
// the result, or the failure, on the entry.
func CollectNTFSRights(
	src entry.Source,
	e *entry.Entry,
	info security.SecurityInformation,
	log logger.LoggerInterface,
) error {
	sd, err := src.Security(e.Path, info)
	if err != nil {
		e.Security, e.SecurityErr = nil, err
		log.Debug("[collect_ntfs_rights] Error getting security descriptor: " + err.Error())
		return err
	}

	e.Security, e.SecurityErr = sd, nil

	acl, present, _ := sd.DACL()
	switch {
	case !present:
		log.Debug("[collect_ntfs_rights] No DACL on " + e.Rel)
	case acl == nil:
		log.Debug("[collect_ntfs_rights] NULL DACL on " + e.Rel)
	default:
		log.Debug(fmt.Sprintf("[collect_ntfs_rights] %d ACE(s) on %s", len(acl.Entries), e.Rel))
	}
	return nil
}
