package sweeper

import (
	"context"
)

// Sweeper is a long running maintenance loop over the webhook_events table.
// One implementation requeues failed events whose backoff has elapsed, the
// other returns events stuck in processing to the retry path.
//
//go:generate mockgen -source=sweeper.go -destination=../mocks/sweeper.go -package=mocks -mock_names=Sweeper=MockSweeper
type Sweeper interface {
	// Start runs sweep passes on the configured interval until ctx is
	// canceled
	Start(ctx context.Context) error

	// Stop waits for the in-progress pass to finish, up to ctx's deadline
	Stop(ctx context.Context) error

	// Name identifies the sweeper in logs
	Name() string
}
