package common

import "time"

const (
	// TokenHeaderName carries the session token on authenticated requests.
	TokenHeaderName = "X-Token"

	// SessionKeyPrefix prefixes session keys in the expiring store.
	SessionKeyPrefix = "auth_"

	// SessionTTL is the fixed lifetime of a session.
	SessionTTL = 24 * time.Hour

	// RootParentID is the parent id of top-level nodes. It never names a real folder.
	RootParentID = "0"

	// PageSize is the fixed number of files returned per listing page.
	PageSize = 20

	// Queue names.
	ThumbnailQueue = "fileQueue"
	WelcomeQueue   = "userQueue"
)

// ThumbnailWidths lists the generated image variant widths.
var ThumbnailWidths = []int{500, 250, 100}
