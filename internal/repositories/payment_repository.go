package repositories

import (
	"context"
	"fmt"
	"time"

	"rental-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

// GenerateReceiptNumber produces the next number in the RCP-000001 series.
func (r *PaymentRepository) GenerateReceiptNumber(ctx context.Context) (string, error) {
	var seq int64
	err := r.DB.QueryRow(ctx, `SELECT nextval('receipt_number_sequence')`).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RCP-%06d", seq), nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO payments(receipt_number, agreement_id, type, amount, amount_paid, balance,
                status, payment_date, late_fine_amount, days_overdue, processed_by_user_id, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, 0), $12)
         RETURNING id, created_at, updated_at`,
		p.ReceiptNumber, p.AgreementID, p.Type, p.Amount, p.AmountPaid, p.Balance,
		p.Status, p.PaymentDate, p.LateFineAmount, p.DaysOverdue, p.ProcessedByUserID, p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PaymentRepository) Get(ctx context.Context, id int) (*models.Payment, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT p.id, p.receipt_number, p.agreement_id, p.type, p.amount, p.amount_paid, p.balance,
                p.status, p.payment_date, p.late_fine_amount, p.days_overdue,
                COALESCE(p.processed_by_user_id, 0), COALESCE(u.name, ''), COALESCE(p.notes, ''),
                p.created_at, p.updated_at
         FROM payments p
         LEFT JOIN users u ON u.id = p.processed_by_user_id
         WHERE p.id=$1`, id)

	var p models.Payment
	err := row.Scan(&p.ID, &p.ReceiptNumber, &p.AgreementID, &p.Type, &p.Amount, &p.AmountPaid, &p.Balance,
		&p.Status, &p.PaymentDate, &p.LateFineAmount, &p.DaysOverdue,
		&p.ProcessedByUserID, &p.ProcessedByName, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

// GetByAgreement returns all payments for an agreement, newest payment date first.
func (r *PaymentRepository) GetByAgreement(ctx context.Context, agreementID int) ([]*models.Payment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT p.id, p.receipt_number, p.agreement_id, p.type, p.amount, p.amount_paid, p.balance,
                p.status, p.payment_date, p.late_fine_amount, p.days_overdue,
                COALESCE(p.processed_by_user_id, 0), COALESCE(u.name, ''), COALESCE(p.notes, ''),
                p.created_at, p.updated_at
         FROM payments p
         LEFT JOIN users u ON u.id = p.processed_by_user_id
         WHERE p.agreement_id=$1
         ORDER BY p.payment_date DESC, p.id DESC`, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// List returns payments in a date range, newest first.
func (r *PaymentRepository) List(ctx context.Context, from, to time.Time) ([]*models.Payment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT p.id, p.receipt_number, p.agreement_id, p.type, p.amount, p.amount_paid, p.balance,
                p.status, p.payment_date, p.late_fine_amount, p.days_overdue,
                COALESCE(p.processed_by_user_id, 0), COALESCE(u.name, ''), COALESCE(p.notes, ''),
                p.created_at, p.updated_at
         FROM payments p
         LEFT JOIN users u ON u.id = p.processed_by_user_id
         WHERE p.payment_date >= $1 AND p.payment_date <= $2
         ORDER BY p.payment_date DESC, p.id DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// UpdateProgress records a partial or final payment against an existing record.
func (r *PaymentRepository) UpdateProgress(ctx context.Context, id int, amountPaid, balance float64, status string, notes string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE payments SET amount_paid=$1, balance=$2, status=$3, notes=$4, updated_at=NOW()
         WHERE id=$5`, amountPaid, balance, status, notes, id)
	return err
}

// ExistsForMonth reports whether the agreement already has a RENT payment
// dated inside the given month. Used by the missing-month backfill.
func (r *PaymentRepository) ExistsForMonth(ctx context.Context, agreementID int, monthStart time.Time) (bool, error) {
	monthEnd := monthStart.AddDate(0, 1, 0)
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(
            SELECT 1 FROM payments
            WHERE agreement_id=$1 AND type=$2
              AND payment_date >= $3 AND payment_date < $4)`,
		agreementID, models.PaymentTypeRent, monthStart, monthEnd).Scan(&exists)
	return exists, err
}

func (r *PaymentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM payments WHERE id=$1`, id)
	return err
}

type paymentRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPayments(rows paymentRows) ([]*models.Payment, error) {
	var payments []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ReceiptNumber, &p.AgreementID, &p.Type, &p.Amount, &p.AmountPaid, &p.Balance,
			&p.Status, &p.PaymentDate, &p.LateFineAmount, &p.DaysOverdue,
			&p.ProcessedByUserID, &p.ProcessedByName, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
