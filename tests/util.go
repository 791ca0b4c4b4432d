package testutil

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/bahati/elimu/core/payment"
	"github.com/bahati/elimu/core/student"
	"github.com/bahati/elimu/core/task"
	"github.com/bahati/elimu/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	role user.Role,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateParent creates an active parent user; key may be empty for a parent
// without a push channel.
func CreateParent(t *testing.T, repo user.Repository, name, uname, email, key string) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      user.RoleParent,
		IsActive:  true,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if key != "" {
		usr.NotificationKey = null.StringFrom(key)
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateParent() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, name, admissionNo, className string, parentID *int) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	stu := student.Student{
		Name:        name,
		AdmissionNo: admissionNo,
		ClassName:   className,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	if parentID != nil {
		stu.ParentID = null.IntFrom(*parentID)
	}
	stu, err := repo.CreateStudent(stu)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreatePayment(t *testing.T, repo payment.Repository, title string, amount float64, studentIDs ...int) payment.Payment {
	t.Helper()

	tstamp := time.Now().UTC()
	p := payment.Payment{
		Title:     title,
		Amount:    amount,
		DueDate:   tstamp.Add(30 * 24 * time.Hour),
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	p, err := repo.CreatePayment(p, studentIDs)
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return p
}

func CreateTask(t *testing.T, repo task.Repository, title, subject string, studentIDs ...int) task.Task {
	t.Helper()

	tstamp := time.Now().UTC()
	tsk := task.Task{
		Title:     title,
		Subject:   subject,
		DueDate:   tstamp.Add(7 * 24 * time.Hour),
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	tsk, err := repo.CreateTask(tsk, studentIDs)
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}
