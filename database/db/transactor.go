package db

import (
	"database/sql"
	"runtime/debug"

	"gorm.io/gorm"
)

// TransactionFunc is the body run inside a transaction.
type TransactionFunc = func(tx *gorm.DB) error

// Transaction runs body in a transaction. Any error or panic rolls back; panics are
// re-raised after the rollback.
func Transaction(db *gorm.DB, body TransactionFunc, opts ...*sql.TxOptions) (err error) {
	tx := db.Begin(opts...)
	if tx.Error != nil {
		logger.Error("Transaction: Cannot open transaction %s", tx.Error.Error())
		return tx.Error
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("Transaction: rollback due to panic: %v\n%s",
				recovered, string(debug.Stack()))
			if rbErr := tx.Rollback().Error; rbErr != nil {
				logger.Error("Transaction: rollback failed: %v", rbErr)
			}
			panic(recovered)
		}
		if err != nil {
			logger.Warn("Transaction: rollback due to error: %v", err)
			if rbErr := tx.Rollback().Error; rbErr != nil {
				logger.Error("Transaction: rollback failed: %v", rbErr)
			}
		}
	}()

	if err = body(tx); err != nil {
		return err
	}
	return tx.Commit().Error
}
