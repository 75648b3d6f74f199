package payment

import (
	"context"
	"time"

	"github.com/MikeMC777/bookstore/internal/database"
)

// IPNStore is the audit log of every notification received.
type IPNStore interface {
	Save(ctx context.Context, n *IPN) error
	// CompletedTxnExists reports whether txnID was already accepted as a
	// completed payment.
	CompletedTxnExists(ctx context.Context, txnID string) (bool, error)
}

type PGIPNRepo struct{ db database.DBTX }

func NewPGIPNRepo(db database.DBTX) *PGIPNRepo { return &PGIPNRepo{db: db} }

func (r *PGIPNRepo) Save(ctx context.Context, n *IPN) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
    INSERT INTO paypal_ipn (txn_id, txn_type, payment_status, receiver_email, payer_email,
      mc_gross, mc_currency, invoice, custom, flag, flag_info, query)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    RETURNING id, created_at
  `, n.TxnID, n.TxnType, n.PaymentStatus, n.ReceiverEmail, n.PayerEmail,
		n.McGross, n.McCurrency, n.Invoice, n.Custom, n.Flag, n.FlagInfo, n.Query,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *PGIPNRepo) CompletedTxnExists(ctx context.Context, txnID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM paypal_ipn
      WHERE txn_id = $1 AND payment_status = 'Completed' AND NOT flag
    )
  `, txnID).Scan(&exists)
	return exists, err
}
