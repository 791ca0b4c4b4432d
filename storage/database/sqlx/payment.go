package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/bahati/elimu/core/payment"
)

type paymentRow struct {
	ID        int       `db:"id"`
	Title     string    `db:"title"`
	Amount    float64   `db:"amount"`
	DueDate   time.Time `db:"due_date"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row paymentRow) payment() payment.Payment {
	return payment.Payment{
		ID:        row.ID,
		Title:     row.Title,
		Amount:    row.Amount,
		DueDate:   row.DueDate,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type paymentAssignmentRow struct {
	ID        int `db:"id"`
	PaymentID int `db:"payment_id"`
	StudentID int `db:"student_id"`
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo paymentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return payment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// CreatePayment inserts the payment and its assignments in one transaction.
func (repo paymentRepository) CreatePayment(p payment.Payment, studentIDs []int) (payment.Payment, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO payment (title, amount, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err = tx.Get(&p.ID, query, p.Title, p.Amount, p.DueDate, p.CreatedAt.UTC(), p.UpdatedAt.UTC()); err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}

	for _, sid := range studentIDs {
		a := payment.Assignment{PaymentID: p.ID, StudentID: sid}
		query = `INSERT INTO payment_assignment (payment_id, student_id) VALUES ($1, $2) RETURNING id`
		if err = tx.Get(&a.ID, query, a.PaymentID, a.StudentID); err != nil {
			return payment.Payment{}, errors.Wrap(err, "inserting payment assignment")
		}
		p.Assignments = append(p.Assignments, a)
	}

	if err = tx.Commit(); err != nil {
		return payment.Payment{}, errors.Wrap(err, "committing payment")
	}
	return p, nil
}

func (repo paymentRepository) QueryAllPayments() ([]payment.Payment, error) {
	var rows []paymentRow
	if err := repo.db.Select(&rows, `SELECT * FROM payment`); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, row.payment())
	}
	return payments, nil
}

func (repo paymentRepository) GetPaymentByID(id int) (payment.Payment, error) {
	var row paymentRow
	if err := repo.db.Get(&row, `SELECT * FROM payment WHERE id = $1`, id); err != nil {
		return payment.Payment{}, repo.trapNoRowsErr(err, "finding payment by ID")
	}
	p := row.payment()

	assignments, err := repo.GetAssignments(p.ID)
	if err != nil {
		return payment.Payment{}, err
	}
	p.Assignments = assignments
	return p, nil
}

func (repo paymentRepository) GetAssignments(paymentID int) ([]payment.Assignment, error) {
	var rows []paymentAssignmentRow
	if err := repo.db.Select(&rows, `SELECT * FROM payment_assignment WHERE payment_id = $1`, paymentID); err != nil {
		return nil, errors.Wrap(err, "querying payment assignments")
	}
	assignments := make([]payment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, payment.Assignment(row))
	}
	return assignments, nil
}

func (repo paymentRepository) DeletePaymentsByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM payment WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building payment delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting payments")
	}
	return nil
}
