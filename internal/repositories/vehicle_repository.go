package repositories

import (
	"context"
	"rental-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VehicleRepository struct {
	DB *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{DB: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	if v.Status == "" {
		v.Status = models.VehicleStatusAvailable
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO vehicles(license_plate, make, model, year, color, vin, status, mileage, daily_rate)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id, created_at, updated_at`,
		v.LicensePlate, v.Make, v.Model, v.Year, v.Color, v.VIN, v.Status, v.Mileage, v.DailyRate,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VehicleRepository) Get(ctx context.Context, id int) (*models.Vehicle, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, license_plate, make, model, year, COALESCE(color, ''), COALESCE(vin, ''),
                status, mileage, daily_rate, created_at, updated_at
         FROM vehicles WHERE id=$1`, id)

	var v models.Vehicle
	err := row.Scan(&v.ID, &v.LicensePlate, &v.Make, &v.Model, &v.Year, &v.Color, &v.VIN,
		&v.Status, &v.Mileage, &v.DailyRate, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *VehicleRepository) GetByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, license_plate, make, model, year, COALESCE(color, ''), COALESCE(vin, ''),
                status, mileage, daily_rate, created_at, updated_at
         FROM vehicles WHERE license_plate=$1`, plate)

	var v models.Vehicle
	err := row.Scan(&v.ID, &v.LicensePlate, &v.Make, &v.Model, &v.Year, &v.Color, &v.VIN,
		&v.Status, &v.Mileage, &v.DailyRate, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

// List returns vehicles, optionally filtered by status.
func (r *VehicleRepository) List(ctx context.Context, status string) ([]*models.Vehicle, error) {
	query := `SELECT id, license_plate, make, model, year, COALESCE(color, ''), COALESCE(vin, ''),
                     status, mileage, daily_rate, created_at, updated_at
              FROM vehicles`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY license_plate`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.LicensePlate, &v.Make, &v.Model, &v.Year, &v.Color, &v.VIN,
			&v.Status, &v.Mileage, &v.DailyRate, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &v)
	}
	return vehicles, rows.Err()
}

func (r *VehicleRepository) Update(ctx context.Context, v *models.Vehicle) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vehicles SET license_plate=$1, make=$2, model=$3, year=$4, color=$5, vin=$6,
                status=$7, mileage=$8, daily_rate=$9, updated_at=NOW()
         WHERE id=$10`,
		v.LicensePlate, v.Make, v.Model, v.Year, v.Color, v.VIN, v.Status, v.Mileage, v.DailyRate, v.ID)
	return err
}

func (r *VehicleRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vehicles SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return err
}

func (r *VehicleRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM vehicles WHERE id=$1`, id)
	return err
}
