package listing

import (
	"database/sql"
	"strings"
)

// ownerNameFallback is shown when a listing's owner row is missing.
const ownerNameFallback = "Unknown"

// imageListSeparator is the wire format of the read queries: GROUP_CONCAT
// joins image paths with commas. Generated image names never contain one.
const imageListSeparator = ","

// splitImageList parses the concatenated image column from the join
// queries into an ordered slice. An absent or empty aggregate yields an
// empty slice, never nil, so JSON encodes it as [].
func splitImageList(images sql.NullString) []string {
	if !images.Valid || images.String == "" {
		return []string{}
	}
	return strings.Split(images.String, imageListSeparator)
}

// ownerName resolves the joined username column, substituting a fallback
// label when the owner record is missing.
func ownerName(username sql.NullString) string {
	if username.Valid && username.String != "" {
		return username.String
	}
	return ownerNameFallback
}
