// Package jobs contains the background job handlers run by queue workers:
// image thumbnails and welcome notifications.
package jobs

// ThumbnailPayload is enqueued on common.ThumbnailQueue for every new image.
type ThumbnailPayload struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// WelcomePayload is enqueued on common.WelcomeQueue for every new user.
type WelcomePayload struct {
	UserID string `json:"userId"`
}
