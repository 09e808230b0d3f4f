package repositories

import (
	"context"
	"time"

	"rental-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TrafficFineRepository struct {
	DB *pgxpool.Pool
}

func NewTrafficFineRepository(db *pgxpool.Pool) *TrafficFineRepository {
	return &TrafficFineRepository{DB: db}
}

// Upsert inserts a fine by violation number, or refreshes its details if the
// authority re-sends it. Returns true when a new row was created.
func (r *TrafficFineRepository) Upsert(ctx context.Context, f *models.TrafficFine) (bool, error) {
	var inserted bool
	err := r.DB.QueryRow(ctx,
		`INSERT INTO traffic_fines(violation_number, vehicle_id, agreement_id, violation_date,
                location, violation_type, amount, status)
         VALUES($1, $2, NULLIF($3, 0), $4, $5, $6, $7, $8)
         ON CONFLICT (violation_number) DO UPDATE
            SET location=EXCLUDED.location, violation_type=EXCLUDED.violation_type,
                amount=EXCLUDED.amount, updated_at=NOW()
         RETURNING id, (xmax = 0)`,
		f.ViolationNumber, f.VehicleID, f.AgreementID, f.ViolationDate,
		f.Location, f.ViolationType, f.Amount, f.Status,
	).Scan(&f.ID, &inserted)
	return inserted, err
}

func (r *TrafficFineRepository) Get(ctx context.Context, id int) (*models.TrafficFine, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, violation_number, vehicle_id, COALESCE(agreement_id, 0), violation_date,
                COALESCE(location, ''), COALESCE(violation_type, ''), amount, status, created_at, updated_at
         FROM traffic_fines WHERE id=$1`, id)

	var f models.TrafficFine
	err := row.Scan(&f.ID, &f.ViolationNumber, &f.VehicleID, &f.AgreementID, &f.ViolationDate,
		&f.Location, &f.ViolationType, &f.Amount, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	return &f, err
}

// List returns fines, optionally filtered by vehicle.
func (r *TrafficFineRepository) List(ctx context.Context, vehicleID int) ([]*models.TrafficFine, error) {
	query := `SELECT id, violation_number, vehicle_id, COALESCE(agreement_id, 0), violation_date,
                     COALESCE(location, ''), COALESCE(violation_type, ''), amount, status, created_at, updated_at
              FROM traffic_fines`
	args := []interface{}{}
	if vehicleID > 0 {
		query += ` WHERE vehicle_id=$1`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY violation_date DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fines []*models.TrafficFine
	for rows.Next() {
		var f models.TrafficFine
		if err := rows.Scan(&f.ID, &f.ViolationNumber, &f.VehicleID, &f.AgreementID, &f.ViolationDate,
			&f.Location, &f.ViolationType, &f.Amount, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		fines = append(fines, &f)
	}
	return fines, rows.Err()
}

// AssignAgreement links a fine to the agreement that covered the violation date.
func (r *TrafficFineRepository) AssignAgreement(ctx context.Context, fineID, agreementID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE traffic_fines SET agreement_id=$1, updated_at=NOW() WHERE id=$2`, agreementID, fineID)
	return err
}

func (r *TrafficFineRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE traffic_fines SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return err
}

// FindAgreementForDate returns the agreement active on the vehicle at the
// violation instant, or 0 when none covers it.
func (r *TrafficFineRepository) FindAgreementForDate(ctx context.Context, vehicleID int, violationDate time.Time) (int, error) {
	var agreementID int
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(MAX(id), 0) FROM agreements
         WHERE vehicle_id=$1 AND start_date <= $2::date AND end_date >= $2::date`,
		vehicleID, violationDate).Scan(&agreementID)
	return agreementID, err
}
