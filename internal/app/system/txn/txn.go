// internal/app/system/txn/txn.go

// Package txn runs a function inside a MongoDB multi-document
// transaction, falling back to plain sequential execution on
// deployments that do not support transactions (standalone servers,
// some hosted tiers). The score-and-completion write path depends on
// this: on a replica set the increment and the completion mark commit
// or abort together; on a standalone server the behavior degrades to
// ordered independent writes.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn transactionally when the deployment allows it.
// fn must use the context it receives for every store call so the
// operations join the session.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Debug("sessions unsupported; running writes without a transaction")
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Debug("transactions unsupported; running writes without a transaction")
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates the deployment cannot
// run multi-document transactions, as opposed to the transaction
// legitimately failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation variants raised by non-replica-set servers
			return true
		}
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "transaction") && strings.Contains(s, "replica set"):
		return true
	case strings.Contains(s, "session") && strings.Contains(s, "not supported"):
		return true
	case strings.Contains(s, "transaction") && strings.Contains(s, "session"):
		return true
	case strings.Contains(s, "illegal operation"):
		return true
	}
	return false
}
