package repositories

import (
	"context"
	"rental-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OnlineTransactionRepository struct {
	DB *pgxpool.Pool
}

func NewOnlineTransactionRepository(db *pgxpool.Pool) *OnlineTransactionRepository {
	return &OnlineTransactionRepository{DB: db}
}

func (r *OnlineTransactionRepository) Create(ctx context.Context, t *models.OnlineTransaction) error {
	if t.Status == "" {
		t.Status = models.OnlineTxStatusPending
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO online_transactions(razorpay_order_id, customer_id, agreement_id,
                amount, fee_amount, total_amount, status)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		t.RazorpayOrderID, t.CustomerID, t.AgreementID,
		t.Amount, t.FeeAmount, t.TotalAmount, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *OnlineTransactionRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OnlineTransaction, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, razorpay_order_id, COALESCE(razorpay_payment_id, ''), COALESCE(razorpay_signature, ''),
                customer_id, agreement_id, COALESCE(payment_id, 0),
                amount, fee_amount, total_amount, COALESCE(payment_method, ''), status,
                COALESCE(failure_reason, ''), created_at, updated_at
         FROM online_transactions WHERE razorpay_order_id=$1`, orderID)

	var t models.OnlineTransaction
	err := row.Scan(&t.ID, &t.RazorpayOrderID, &t.RazorpayPaymentID, &t.RazorpaySignature,
		&t.CustomerID, &t.AgreementID, &t.PaymentID,
		&t.Amount, &t.FeeAmount, &t.TotalAmount, &t.PaymentMethod, &t.Status,
		&t.FailureReason, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

// MarkSuccess stores the verified Razorpay identifiers and links the rent payment.
func (r *OnlineTransactionRepository) MarkSuccess(ctx context.Context, id int, paymentID string, signature string, rentPaymentID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE online_transactions
         SET razorpay_payment_id=$1, razorpay_signature=$2, payment_id=NULLIF($3, 0),
             status=$4, updated_at=NOW()
         WHERE id=$5`,
		paymentID, signature, rentPaymentID, models.OnlineTxStatusSuccess, id)
	return err
}

func (r *OnlineTransactionRepository) MarkFailed(ctx context.Context, id int, reason string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE online_transactions SET status=$1, failure_reason=$2, updated_at=NOW()
         WHERE id=$3`, models.OnlineTxStatusFailed, reason, id)
	return err
}

// ListByAgreement returns an agreement's online transactions, newest first.
func (r *OnlineTransactionRepository) ListByAgreement(ctx context.Context, agreementID int) ([]*models.OnlineTransaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, razorpay_order_id, COALESCE(razorpay_payment_id, ''), COALESCE(razorpay_signature, ''),
                customer_id, agreement_id, COALESCE(payment_id, 0),
                amount, fee_amount, total_amount, COALESCE(payment_method, ''), status,
                COALESCE(failure_reason, ''), created_at, updated_at
         FROM online_transactions WHERE agreement_id=$1 ORDER BY created_at DESC`, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*models.OnlineTransaction
	for rows.Next() {
		var t models.OnlineTransaction
		if err := rows.Scan(&t.ID, &t.RazorpayOrderID, &t.RazorpayPaymentID, &t.RazorpaySignature,
			&t.CustomerID, &t.AgreementID, &t.PaymentID,
			&t.Amount, &t.FeeAmount, &t.TotalAmount, &t.PaymentMethod, &t.Status,
			&t.FailureReason, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}
