package postgres

import (
	"context"
	"fmt"

	"mfgplan/internal/core/tx"
)

// MustGetTxManager returns *postgres.TxManager from context.
// It is meant for infrastructure code that needs access to GetQuerier()/GetTx().
//
// Domain code should depend only on internal/core/tx.
func MustGetTxManager(ctx context.Context) *TxManager {
	txm := tx.MustFromContext(ctx)
	postgresTxm, ok := txm.(*TxManager)
	if !ok || postgresTxm == nil {
		panic(fmt.Sprintf("TxManager in context has unexpected type: %T", txm))
	}
	return postgresTxm
}
