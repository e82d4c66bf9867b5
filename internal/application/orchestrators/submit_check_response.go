package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/domain/account"
	"linecheck/internal/domain/microcheck"
)

// MagicTokenStoreForRedeem defines the token store interface for the check flow.
type MagicTokenStoreForRedeem interface {
	GetByToken(ctx context.Context, token string) (microcheck.MagicToken, error)
	Save(ctx context.Context, t microcheck.MagicToken) error
}

// TemplateStoreForCheck defines the template store interface for the check flow.
type TemplateStoreForCheck interface {
	GetByID(ctx context.Context, id string) (microcheck.Template, error)
}

// ResponseStoreForWrite defines the response store interface for the check flow.
type ResponseStoreForWrite interface {
	ListByRun(ctx context.Context, runID string) ([]microcheck.Response, error)
	Save(ctx context.Context, r microcheck.Response) error
}

// AccountStoreForCounter defines the store interface for bumping usage counters.
type AccountStoreForCounter interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

var (
	ErrCheckLinkInvalid = errors.New("check link is invalid")
	ErrRunNotFound      = errors.New("check run not found")
	ErrMissingAnswers   = errors.New("every item needs an answer before submitting")
)

// OpenCheckInput carries input for OpenCheck.
type OpenCheckInput struct {
	Token string
}

// OpenCheckResult carries what the check page needs to render.
type OpenCheckResult struct {
	Run      microcheck.Run
	Template microcheck.Template
}

// OpenCheckDeps holds dependencies for OpenCheck.
type OpenCheckDeps struct {
	TokenStore    MagicTokenStoreForRedeem
	RunStore      RunStoreForWrite
	TemplateStore TemplateStoreForCheck
}

// ExecuteOpenCheck resolves a magic link and moves the run to started.
// The token is NOT consumed on open — the assignee may reload the page;
// it is consumed on submit.
// PRE: Token exists, is unused and unexpired
// POST: Run is in started state
func ExecuteOpenCheck(ctx context.Context, input OpenCheckInput, deps OpenCheckDeps) (OpenCheckResult, error) {
	token, err := deps.TokenStore.GetByToken(ctx, input.Token)
	if err != nil {
		return OpenCheckResult{}, ErrCheckLinkInvalid
	}
	if token.Used {
		return OpenCheckResult{}, microcheck.ErrTokenUsed
	}
	if token.IsExpired(time.Now()) {
		return OpenCheckResult{}, microcheck.ErrTokenExpired
	}

	run, err := deps.RunStore.GetByID(ctx, token.RunID)
	if err != nil {
		return OpenCheckResult{}, ErrRunNotFound
	}
	if err := run.Start(time.Now()); err != nil {
		return OpenCheckResult{}, err
	}
	if err := deps.RunStore.Save(ctx, run); err != nil {
		return OpenCheckResult{}, err
	}

	tpl, err := deps.TemplateStore.GetByID(ctx, run.TemplateID)
	if err != nil {
		return OpenCheckResult{}, err
	}

	slog.Info("check_event", "event", "check_opened", "run_id", run.ID)
	return OpenCheckResult{Run: run, Template: tpl}, nil
}

// ItemAnswer is one submitted item result.
type ItemAnswer struct {
	ItemID string
	Result string // pass, fail, na
	Note   string
}

// SubmitCheckInput carries input for SubmitCheck.
type SubmitCheckInput struct {
	Token   string
	Answers []ItemAnswer
}

// SubmitCheckDeps holds dependencies for SubmitCheck.
type SubmitCheckDeps struct {
	TokenStore    MagicTokenStoreForRedeem
	RunStore      RunStoreForWrite
	TemplateStore TemplateStoreForCheck
	ResponseStore ResponseStoreForWrite
	AccountStore  AccountStoreForCounter // nil skips the usage counter bump
}

// ExecuteSubmitCheck records all item answers, completes the run, and
// consumes the magic token. If the assignee email matches an account,
// its checks-completed counter is bumped — this is what progressively
// unlocks action-gated features.
// PRE: Token is redeemable; every template item has an answer
// POST: Responses saved, run completed, token consumed, counter bumped
func ExecuteSubmitCheck(ctx context.Context, input SubmitCheckInput, deps SubmitCheckDeps) error {
	token, err := deps.TokenStore.GetByToken(ctx, input.Token)
	if err != nil {
		return ErrCheckLinkInvalid
	}

	now := time.Now()
	if err := token.Redeem(now); err != nil {
		return err
	}

	run, err := deps.RunStore.GetByID(ctx, token.RunID)
	if err != nil {
		return ErrRunNotFound
	}
	if err := run.Start(now); err != nil {
		return err
	}

	tpl, err := deps.TemplateStore.GetByID(ctx, run.TemplateID)
	if err != nil {
		return err
	}

	answered := make(map[string]bool, len(input.Answers))
	for _, a := range input.Answers {
		answered[a.ItemID] = true
	}
	for _, item := range tpl.Items {
		if !answered[item.ID] {
			return ErrMissingAnswers
		}
	}

	for _, a := range input.Answers {
		resp := microcheck.Response{
			ID:          uuid.New().String(),
			RunID:       run.ID,
			ItemID:      a.ItemID,
			Result:      a.Result,
			Note:        a.Note,
			SubmittedAt: now,
		}
		if err := resp.Validate(); err != nil {
			return err
		}
		if err := deps.ResponseStore.Save(ctx, resp); err != nil {
			return err
		}
	}

	if err := run.Complete(now); err != nil {
		return err
	}
	if err := deps.RunStore.Save(ctx, run); err != nil {
		return err
	}
	if err := deps.TokenStore.Save(ctx, token); err != nil {
		return err
	}

	if deps.AccountStore != nil && run.AssigneeEmail != "" {
		if acct, err := deps.AccountStore.GetByEmail(ctx, run.AssigneeEmail); err == nil {
			acct.RecordCheckCompleted()
			if err := deps.AccountStore.Save(ctx, acct); err != nil {
				slog.Error("check_counter_save_failed", "account_id", acct.ID, "error", err)
			} else {
				slog.Info("check_event", "event", "counter_bumped", "account_id", acct.ID, "checks_completed", acct.ChecksCompleted)
			}
		}
	}

	slog.Info("check_event", "event", "check_submitted", "run_id", run.ID, "answers", len(input.Answers))
	return nil
}
