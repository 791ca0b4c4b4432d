package inmemdb

import (
	"github.com/bahati/elimu/core/payment"
)

var (
	paymentPKCount           int
	paymentAssignmentPKCount int
)

type paymentRepository struct {
	db *paymentTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) CreatePayment(p payment.Payment, studentIDs []int) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	paymentPKCount++
	p.ID = paymentPKCount

	for _, sid := range studentIDs {
		paymentAssignmentPKCount++
		p.Assignments = append(p.Assignments, payment.Assignment{
			ID:        paymentAssignmentPKCount,
			PaymentID: p.ID,
			StudentID: sid,
		})
	}
	repo.db.assignments[p.ID] = p.Assignments
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) QueryAllPayments() ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	payments := make([]payment.Payment, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		payments = append(payments, *p)
	}
	return payments, nil
}

func (repo *paymentRepository) GetPaymentByID(id int) (payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) GetAssignments(paymentID int) ([]payment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.assignments[paymentID], nil
}

func (repo *paymentRepository) DeletePaymentsByID(ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
		delete(repo.db.assignments, id)
	}
	return nil
}
