package repositories

import (
	"context"
	"fmt"

	"rental-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AgreementRepository struct {
	DB *pgxpool.Pool
}

func NewAgreementRepository(db *pgxpool.Pool) *AgreementRepository {
	return &AgreementRepository{DB: db}
}

// GenerateAgreementNumber produces the next number in the AGR-000001 series.
func (r *AgreementRepository) GenerateAgreementNumber(ctx context.Context) (string, error) {
	var seq int64
	err := r.DB.QueryRow(ctx, `SELECT nextval('agreement_number_sequence')`).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("AGR-%06d", seq), nil
}

func (r *AgreementRepository) Create(ctx context.Context, a *models.Agreement) error {
	if a.Status == "" {
		a.Status = models.AgreementStatusDraft
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO agreements(agreement_number, vehicle_id, customer_id, status, start_date, end_date, rent_amount, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		a.AgreementNumber, a.VehicleID, a.CustomerID, a.Status, a.StartDate, a.EndDate, a.RentAmount, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AgreementRepository) Get(ctx context.Context, id int) (*models.Agreement, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT a.id, a.agreement_number, a.vehicle_id, a.customer_id, a.status,
                a.start_date, a.end_date, a.rent_amount, COALESCE(a.notes, ''),
                a.created_at, a.updated_at, v.license_plate, c.full_name
         FROM agreements a
         JOIN vehicles v ON v.id = a.vehicle_id
         JOIN customers c ON c.id = a.customer_id
         WHERE a.id=$1`, id)

	var a models.Agreement
	err := row.Scan(&a.ID, &a.AgreementNumber, &a.VehicleID, &a.CustomerID, &a.Status,
		&a.StartDate, &a.EndDate, &a.RentAmount, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt, &a.VehiclePlate, &a.CustomerName)
	return &a, err
}

// List returns agreements newest first, optionally filtered by status.
func (r *AgreementRepository) List(ctx context.Context, status string) ([]*models.Agreement, error) {
	query := `SELECT a.id, a.agreement_number, a.vehicle_id, a.customer_id, a.status,
                     a.start_date, a.end_date, a.rent_amount, COALESCE(a.notes, ''),
                     a.created_at, a.updated_at, v.license_plate, c.full_name
              FROM agreements a
              JOIN vehicles v ON v.id = a.vehicle_id
              JOIN customers c ON c.id = a.customer_id`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE a.status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agreements []*models.Agreement
	for rows.Next() {
		var a models.Agreement
		if err := rows.Scan(&a.ID, &a.AgreementNumber, &a.VehicleID, &a.CustomerID, &a.Status,
			&a.StartDate, &a.EndDate, &a.RentAmount, &a.Notes,
			&a.CreatedAt, &a.UpdatedAt, &a.VehiclePlate, &a.CustomerName); err != nil {
			return nil, err
		}
		agreements = append(agreements, &a)
	}
	return agreements, rows.Err()
}

// GetActiveByVehicle returns the active agreements for one vehicle, newest first.
// The conflict resolver keeps the first row and cancels the rest.
func (r *AgreementRepository) GetActiveByVehicle(ctx context.Context, vehicleID int) ([]*models.Agreement, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT a.id, a.agreement_number, a.vehicle_id, a.customer_id, a.status,
                a.start_date, a.end_date, a.rent_amount, COALESCE(a.notes, ''),
                a.created_at, a.updated_at, v.license_plate, c.full_name
         FROM agreements a
         JOIN vehicles v ON v.id = a.vehicle_id
         JOIN customers c ON c.id = a.customer_id
         WHERE a.vehicle_id=$1 AND a.status=$2
         ORDER BY a.created_at DESC`, vehicleID, models.AgreementStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agreements []*models.Agreement
	for rows.Next() {
		var a models.Agreement
		if err := rows.Scan(&a.ID, &a.AgreementNumber, &a.VehicleID, &a.CustomerID, &a.Status,
			&a.StartDate, &a.EndDate, &a.RentAmount, &a.Notes,
			&a.CreatedAt, &a.UpdatedAt, &a.VehiclePlate, &a.CustomerName); err != nil {
			return nil, err
		}
		agreements = append(agreements, &a)
	}
	return agreements, rows.Err()
}

// CancelOtherActive cancels every active agreement on the vehicle except keepID
// in a single statement, so a concurrent resolver pass cannot double-cancel.
// Returns the number of agreements cancelled.
func (r *AgreementRepository) CancelOtherActive(ctx context.Context, vehicleID, keepID int) (int, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE agreements SET status=$1, updated_at=NOW()
         WHERE vehicle_id=$2 AND status=$3 AND id <> $4`,
		models.AgreementStatusCancelled, vehicleID, models.AgreementStatusActive, keepID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// VehiclesWithMultipleActive lists vehicle IDs that currently hold more than
// one active agreement.
func (r *AgreementRepository) VehiclesWithMultipleActive(ctx context.Context) ([]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT vehicle_id FROM agreements
         WHERE status=$1
         GROUP BY vehicle_id HAVING COUNT(*) > 1`, models.AgreementStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *AgreementRepository) Update(ctx context.Context, a *models.Agreement) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE agreements SET status=$1, end_date=$2, rent_amount=$3, notes=$4, updated_at=NOW()
         WHERE id=$5`,
		a.Status, a.EndDate, a.RentAmount, a.Notes, a.ID)
	return err
}

func (r *AgreementRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE agreements SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return err
}

func (r *AgreementRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM agreements WHERE id=$1`, id)
	return err
}
