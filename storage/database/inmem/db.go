package inmemdb

import (
	"sync"

	"github.com/bahati/elimu/core/payment"
	"github.com/bahati/elimu/core/student"
	"github.com/bahati/elimu/core/task"
	"github.com/bahati/elimu/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[int]*user.User
	}

	studentTable struct {
		mutex sync.RWMutex
		table map[int]*student.Student
	}

	paymentTable struct {
		mutex       sync.RWMutex
		table       map[int]*payment.Payment
		assignments map[int][]payment.Assignment // payment ID -> assignments
	}

	taskTable struct {
		mutex       sync.RWMutex
		table       map[int]*task.Task
		assignments map[int][]task.Assignment // task ID -> assignments
	}

	// DB is an in-memory store for dev and tests.
	DB struct {
		user    *userTable
		student *studentTable
		payment *paymentTable
		task    *taskTable
	}
)

func NewDB() *DB {
	return &DB{
		user:    &userTable{table: make(map[int]*user.User)},
		student: &studentTable{table: make(map[int]*student.Student)},
		payment: &paymentTable{table: make(map[int]*payment.Payment), assignments: make(map[int][]payment.Assignment)},
		task:    &taskTable{table: make(map[int]*task.Task), assignments: make(map[int][]task.Assignment)},
	}
}

// Reset empties all tables. For tests.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.table = make(map[int]*user.User)
	db.user.mutex.Unlock()

	db.student.mutex.Lock()
	db.student.table = make(map[int]*student.Student)
	db.student.mutex.Unlock()

	db.payment.mutex.Lock()
	db.payment.table = make(map[int]*payment.Payment)
	db.payment.assignments = make(map[int][]payment.Assignment)
	db.payment.mutex.Unlock()

	db.task.mutex.Lock()
	db.task.table = make(map[int]*task.Task)
	db.task.assignments = make(map[int][]task.Assignment)
	db.task.mutex.Unlock()
}
