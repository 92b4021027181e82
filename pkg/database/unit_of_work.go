package database

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// UnitOfWork manages MongoDB transactions
type UnitOfWork struct {
	client *mongo.Client
}

// NewUnitOfWork creates a new Unit of Work instance
func NewUnitOfWork(client *mongo.Client) *UnitOfWork {
	return &UnitOfWork{
		client: client,
	}
}

// WithTransaction executes fn within a MongoDB transaction. The context passed
// to fn is the session context; repositories must use it for their calls to
// take part in the transaction. If fn returns an error the transaction is aborted.
func (uow *UnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := uow.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	return err
}

// NoTransaction runs fn directly. It is used by drivers without transactions
// (memory, or a standalone mongod).
type NoTransaction struct{}

func (NoTransaction) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
