package repositories

import (
	"context"
	"fmt"

	"rental-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LegalCaseRepository struct {
	DB *pgxpool.Pool
}

func NewLegalCaseRepository(db *pgxpool.Pool) *LegalCaseRepository {
	return &LegalCaseRepository{DB: db}
}

// GenerateCaseNumber produces the next number in the CASE-000001 series.
func (r *LegalCaseRepository) GenerateCaseNumber(ctx context.Context) (string, error) {
	var seq int64
	err := r.DB.QueryRow(ctx, `SELECT nextval('case_number_sequence')`).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CASE-%06d", seq), nil
}

func (r *LegalCaseRepository) Create(ctx context.Context, c *models.LegalCase) error {
	if c.Status == "" {
		c.Status = models.LegalCaseStatusOpen
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO legal_cases(case_number, customer_id, agreement_id, case_type, description,
                amount_claimed, amount_recovered, status)
         VALUES($1, $2, NULLIF($3, 0), $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		c.CaseNumber, c.CustomerID, c.AgreementID, c.CaseType, c.Description,
		c.AmountClaimed, c.AmountRecovered, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *LegalCaseRepository) Get(ctx context.Context, id int) (*models.LegalCase, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, case_number, customer_id, COALESCE(agreement_id, 0), case_type,
                COALESCE(description, ''), amount_claimed, amount_recovered, status, created_at, updated_at
         FROM legal_cases WHERE id=$1`, id)

	var c models.LegalCase
	err := row.Scan(&c.ID, &c.CaseNumber, &c.CustomerID, &c.AgreementID, &c.CaseType,
		&c.Description, &c.AmountClaimed, &c.AmountRecovered, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

// List returns cases, optionally filtered by status.
func (r *LegalCaseRepository) List(ctx context.Context, status string) ([]*models.LegalCase, error) {
	query := `SELECT id, case_number, customer_id, COALESCE(agreement_id, 0), case_type,
                     COALESCE(description, ''), amount_claimed, amount_recovered, status, created_at, updated_at
              FROM legal_cases`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.LegalCase
	for rows.Next() {
		var c models.LegalCase
		if err := rows.Scan(&c.ID, &c.CaseNumber, &c.CustomerID, &c.AgreementID, &c.CaseType,
			&c.Description, &c.AmountClaimed, &c.AmountRecovered, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cases = append(cases, &c)
	}
	return cases, rows.Err()
}

func (r *LegalCaseRepository) Update(ctx context.Context, c *models.LegalCase) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE legal_cases SET case_type=$1, description=$2, amount_claimed=$3,
                amount_recovered=$4, status=$5, updated_at=NOW()
         WHERE id=$6`,
		c.CaseType, c.Description, c.AmountClaimed, c.AmountRecovered, c.Status, c.ID)
	return err
}

func (r *LegalCaseRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM legal_cases WHERE id=$1`, id)
	return err
}
