package models

import "time"

// Schedule is a video post queued for publication on a TikTok account.
type Schedule struct {
	ID           string
	VideoPath    string // Storage key of the uploaded video
	Caption      string
	ScheduleTime time.Time
	Tags         *string
	Status       string
	OwnerID      string
	AccountID    string
	CreatedAt    time.Time
}
