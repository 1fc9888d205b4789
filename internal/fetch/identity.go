package fetch

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mmcdole/gofeed"
)

// EntryID derives a stable identifier for a feed item. Feeds reorder
// and re-publish entries between fetches, so the id must come from
// fields that do not move: the guid when the feed provides one, the
// item link otherwise, and as a last resort a digest of title and
// publication date. The same item must always hash to the same id or
// the seen set stops protecting against re-notification.
func EntryID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	if item.Link != "" {
		return item.Link
	}

	h := sha256.New()
	h.Write([]byte(item.Title))
	h.Write([]byte{0})
	h.Write([]byte(item.Published))
	return hex.EncodeToString(h.Sum(nil))
}
