package payment

import (
	"time"

	"github.com/pkg/errors"

	"github.com/bahati/elimu/core/notif"
)

var ErrNotFound = errors.New("payment not found")

type (
	Repository interface {
		// CreatePayment persists the payment and one assignment per student ID.
		CreatePayment(p Payment, studentIDs []int) (Payment, error)
		QueryAllPayments() ([]Payment, error)
		GetPaymentByID(id int) (Payment, error)
		GetAssignments(paymentID int) ([]Assignment, error)
		DeletePaymentsByID(ids ...int) error
	}

	Service struct {
		repo   Repository
		events notif.Publisher
	}
)

func NewService(repo Repository, events notif.Publisher) *Service {
	return &Service{repo: repo, events: events}
}

func (svc *Service) Create(np NewPayment) (Payment, error) {
	now := time.Now().UTC()
	p := Payment{
		Title:     np.Title,
		Amount:    np.Amount,
		DueDate:   np.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p, err := svc.repo.CreatePayment(p, np.StudentIDs)
	if err != nil {
		return Payment{}, err
	}
	// fire-and-forget w.r.t. the caller; listeners run on their own goroutines
	svc.events.Publish(notif.PaymentCreated(p.ID, p.Title))
	return p, nil
}

func (svc *Service) QueryAll() ([]Payment, error) {
	return svc.repo.QueryAllPayments()
}

func (svc *Service) GetByID(id int) (Payment, error) {
	return svc.repo.GetPaymentByID(id)
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeletePaymentsByID(ids...)
}
