package models

import "time"

// Engagement is a single automated interaction requested for a TikTok account.
// Which optional fields are set depends on EngagementType.
type Engagement struct {
	ID             string
	AccountID      string
	EngagementType string
	TargetURL      *string
	TargetUsername *string
	CommentText    *string
	ShareType      *string
	Status         string
	CreatedAt      time.Time
}
