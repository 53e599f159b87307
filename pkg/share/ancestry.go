package share

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/storage/drive"
)

// maxAncestryHops bounds the upward walk so a deep or unexpected folder
// graph cannot stall a request. Real hierarchies are a few levels deep.
const maxAncestryHops = 32

// ValidateAncestry reports whether folderID is rootID or a strict
// descendant of it. Any lookup failure, a folder with no parent, and a walk
// longer than maxAncestryHops all deny: authorization fails closed.
func ValidateAncestry(ctx context.Context, d drive.Drive, rootID, folderID string) bool {
	if folderID == rootID {
		return true
	}

	current := folderID
	for hop := 0; hop < maxAncestryHops; hop++ {
		folder, err := d.GetFolder(ctx, current)
		if err != nil {
			log.Warn().Err(err).Str("folder_id", current).Msg("Ancestry lookup failed")
			return false
		}
		if len(folder.Parents) == 0 {
			return false
		}
		if folder.Parents[0] == rootID {
			return true
		}
		current = folder.Parents[0]
	}

	log.Warn().Str("folder_id", folderID).Str("root_id", rootID).Msg("Ancestry walk exceeded hop limit")
	return false
}
