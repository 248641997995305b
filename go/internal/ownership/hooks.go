package ownership

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/mcdev12/dynasty-ownership/go/internal/projector"
	"github.com/rs/zerolog/log"
)

// Hook runs after an ownership change has committed. Its error is logged and
// never returned to the caller of Add or Drop.
type Hook interface {
	Name() string
	OnCommit(ctx context.Context, evt Event) error
}

type hookFunc struct {
	name string
	fn   func(ctx context.Context, evt Event) error
}

func (h hookFunc) Name() string { return h.name }

func (h hookFunc) OnCommit(ctx context.Context, evt Event) error { return h.fn(ctx, evt) }

// NewHook adapts a function into a named Hook.
func NewHook(name string, fn func(ctx context.Context, evt Event) error) Hook {
	return hookFunc{name: name, fn: fn}
}

// TransactionAppender is the transaction log as seen by the arbitrator
type TransactionAppender interface {
	Append(ctx context.Context, leagueID, playerID, holderID uuid.UUID, txType models.TransactionType) (*models.Transaction, error)
}

// TransactionLogHook records every ADD and DROP.
func TransactionLogHook(txlog TransactionAppender) Hook {
	return NewHook("transaction_log", func(ctx context.Context, evt Event) error {
		_, err := txlog.Append(ctx, evt.LeagueID, evt.PlayerID, evt.HolderID, evt.Type)
		return err
	})
}

// Projector generates daily placements for a new claim
type Projector interface {
	Project(ctx context.Context, req projector.ProjectRequest) (int, error)
}

// ProjectorHook projects placements after every ADD. Drops are ignored; the
// arbitrator purges future placements itself.
func ProjectorHook(p Projector) Hook {
	return NewHook("projector", func(ctx context.Context, evt Event) error {
		if evt.Type != models.TransactionTypeAdd {
			return nil
		}
		_, err := p.Project(ctx, projector.ProjectRequest{
			LeagueID: evt.LeagueID,
			PlayerID: evt.PlayerID,
			HolderID: evt.HolderID,
			Slot:     evt.Slot,
		})
		return err
	})
}

// runHooks invokes hooks in order. The ownership change is already durable, so
// the hooks run detached from the caller's cancellation.
func (a *App) runHooks(ctx context.Context, evt Event) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range a.hooks {
		if err := safeRun(ctx, h, evt); err != nil {
			log.Error().
				Err(err).
				Str("hook", h.Name()).
				Str("type", string(evt.Type)).
				Str("league_id", evt.LeagueID.String()).
				Str("player_id", evt.PlayerID.String()).
				Str("holder_id", evt.HolderID.String()).
				Msg("post-commit hook failed")
		}
	}
}

func safeRun(ctx context.Context, h Hook, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.OnCommit(ctx, evt)
}
