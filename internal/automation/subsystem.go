// Package automation is the boundary to the external TikTok automation
// subsystem (browser control, device simulation, proxy rotation, post
// scheduling). Only the call contract lives here.
package automation

import (
	"context"
	"time"
)

// Outcome is the result of an engagement call
type Outcome int

const (
	// OutcomeSkipped means no subsystem is available; nothing was attempted
	OutcomeSkipped Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

// OutcomeOf maps the subsystem's boolean result to an Outcome
func OutcomeOf(success bool) Outcome {
	if success {
		return OutcomeSucceeded
	}
	return OutcomeFailed
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Subsystem is the capability set the API forwards mutations to.
// Returned errors wrap models.ErrSubsystemFailure.
type Subsystem interface {
	AddAccount(ctx context.Context, handle, password, country string, proxy *string) error
	RemoveAccount(ctx context.Context, handle string) error
	AddPost(ctx context.Context, handle, filePath, caption string, when time.Time, tags *string) error
	RemovePost(ctx context.Context, id string) error
	AddProxy(ctx context.Context, address, country string) error
	RemoveProxy(ctx context.Context, address string) error

	LikeVideo(ctx context.Context, handle, url string) (Outcome, error)
	CommentVideo(ctx context.Context, handle, url, text string) (Outcome, error)
	ShareVideo(ctx context.Context, handle, url, mode string) (Outcome, error)
	SaveVideo(ctx context.Context, handle, url string) (Outcome, error)
	FollowUser(ctx context.Context, handle, target string) (Outcome, error)
}
