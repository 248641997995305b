package txlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
)

// Repository defines what the transaction log needs from storage
type Repository interface {
	InsertTransaction(ctx context.Context, t models.Transaction) error
	FetchUnpublishedTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	FetchTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	MarkTransactionPublished(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Publisher delivers a transaction downstream. Publishing the same
// transaction twice must be harmless.
type Publisher interface {
	Publish(ctx context.Context, t models.Transaction) error
}
