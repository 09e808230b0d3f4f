package repositories

import (
	"context"
	"rental-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(full_name, phone, email, address, driver_license, id_document_url)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		c.FullName, c.Phone, c.Email, c.Address, c.DriverLicense, c.IDDocumentURL,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, full_name, phone, COALESCE(email, ''), COALESCE(address, ''),
                COALESCE(driver_license, ''), COALESCE(id_document_url, ''), created_at, updated_at
         FROM customers WHERE id=$1`, id)

	var c models.Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Phone, &c.Email, &c.Address,
		&c.DriverLicense, &c.IDDocumentURL, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

// List returns customers, optionally filtered by a name/phone search term.
func (r *CustomerRepository) List(ctx context.Context, search string) ([]*models.Customer, error) {
	query := `SELECT id, full_name, phone, COALESCE(email, ''), COALESCE(address, ''),
                     COALESCE(driver_license, ''), COALESCE(id_document_url, ''), created_at, updated_at
              FROM customers`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE full_name ILIKE $1 OR phone LIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY full_name`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.FullName, &c.Phone, &c.Email, &c.Address,
			&c.DriverLicense, &c.IDDocumentURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE customers SET full_name=$1, phone=$2, email=$3, address=$4,
                driver_license=$5, id_document_url=$6, updated_at=NOW()
         WHERE id=$7`,
		c.FullName, c.Phone, c.Email, c.Address, c.DriverLicense, c.IDDocumentURL, c.ID)
	return err
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	return err
}
