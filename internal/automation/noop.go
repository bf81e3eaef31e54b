package automation

import (
	"context"
	"time"
)

// Noop stands in when no subsystem is configured. Management calls succeed
// and every engagement is skipped.
type Noop struct{}

var _ Subsystem = Noop{}

func (Noop) AddAccount(ctx context.Context, handle, password, country string, proxy *string) error {
	return nil
}

func (Noop) RemoveAccount(ctx context.Context, handle string) error { return nil }

func (Noop) AddPost(ctx context.Context, handle, filePath, caption string, when time.Time, tags *string) error {
	return nil
}

func (Noop) RemovePost(ctx context.Context, id string) error { return nil }

func (Noop) AddProxy(ctx context.Context, address, country string) error { return nil }

func (Noop) RemoveProxy(ctx context.Context, address string) error { return nil }

func (Noop) LikeVideo(ctx context.Context, handle, url string) (Outcome, error) {
	return OutcomeSkipped, nil
}

func (Noop) CommentVideo(ctx context.Context, handle, url, text string) (Outcome, error) {
	return OutcomeSkipped, nil
}

func (Noop) ShareVideo(ctx context.Context, handle, url, mode string) (Outcome, error) {
	return OutcomeSkipped, nil
}

func (Noop) SaveVideo(ctx context.Context, handle, url string) (Outcome, error) {
	return OutcomeSkipped, nil
}

func (Noop) FollowUser(ctx context.Context, handle, target string) (Outcome, error) {
	return OutcomeSkipped, nil
}
