package orchestrators

import (
	"context"
	"log/slog"

	"linecheck/internal/domain/account"
)

// AccountStoreForVideo defines the store interface needed by RecordVideoWatched.
type AccountStoreForVideo interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// RecordVideoWatchedDeps holds dependencies for RecordVideoWatched.
type RecordVideoWatchedDeps struct {
	AccountStore AccountStoreForVideo
}

// ExecuteRecordVideoWatched bumps the coach-video usage counter for an
// account. Watching videos is one of the actions that progressively
// unlocks gated features.
// PRE: Account exists
// POST: VideosWatched incremented by one
func ExecuteRecordVideoWatched(ctx context.Context, accountID string, deps RecordVideoWatchedDeps) (int, error) {
	acct, err := deps.AccountStore.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	acct.RecordVideoWatched()
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return 0, err
	}

	slog.Info("coach_event", "event", "video_watched", "account_id", accountID, "videos_watched", acct.VideosWatched)
	return acct.VideosWatched, nil
}
