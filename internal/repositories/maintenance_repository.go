package repositories

import (
	"context"
	"time"

	"rental-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MaintenanceRepository struct {
	DB *pgxpool.Pool
}

func NewMaintenanceRepository(db *pgxpool.Pool) *MaintenanceRepository {
	return &MaintenanceRepository{DB: db}
}

func (r *MaintenanceRepository) Create(ctx context.Context, m *models.MaintenanceRecord) error {
	if m.Status == "" {
		m.Status = models.MaintenanceStatusScheduled
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO maintenance_records(vehicle_id, service_type, description, status, cost, scheduled_date)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		m.VehicleID, m.ServiceType, m.Description, m.Status, m.Cost, m.ScheduledDate,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *MaintenanceRepository) Get(ctx context.Context, id int) (*models.MaintenanceRecord, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, vehicle_id, service_type, COALESCE(description, ''), status, cost,
                scheduled_date, completed_date, created_at, updated_at
         FROM maintenance_records WHERE id=$1`, id)

	var m models.MaintenanceRecord
	err := row.Scan(&m.ID, &m.VehicleID, &m.ServiceType, &m.Description, &m.Status, &m.Cost,
		&m.ScheduledDate, &m.CompletedDate, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

// List returns maintenance records, optionally filtered by vehicle.
func (r *MaintenanceRepository) List(ctx context.Context, vehicleID int) ([]*models.MaintenanceRecord, error) {
	query := `SELECT id, vehicle_id, service_type, COALESCE(description, ''), status, cost,
                     scheduled_date, completed_date, created_at, updated_at
              FROM maintenance_records`
	args := []interface{}{}
	if vehicleID > 0 {
		query += ` WHERE vehicle_id=$1`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY scheduled_date DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.MaintenanceRecord
	for rows.Next() {
		var m models.MaintenanceRecord
		if err := rows.Scan(&m.ID, &m.VehicleID, &m.ServiceType, &m.Description, &m.Status, &m.Cost,
			&m.ScheduledDate, &m.CompletedDate, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, &m)
	}
	return records, rows.Err()
}

// Complete marks a record finished with its final cost.
func (r *MaintenanceRepository) Complete(ctx context.Context, id int, completedDate time.Time, cost float64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE maintenance_records SET status=$1, completed_date=$2, cost=$3, updated_at=NOW()
         WHERE id=$4`, models.MaintenanceStatusCompleted, completedDate, cost, id)
	return err
}

func (r *MaintenanceRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE maintenance_records SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return err
}

func (r *MaintenanceRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM maintenance_records WHERE id=$1`, id)
	return err
}
