package student

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		CreateStudent(stu Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id int) (Student, error)
		UpdateStudent(stu Student) (Student, error)
		DeleteStudentsByID(ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	stu := Student{
		Name:        ns.Name,
		AdmissionNo: ns.AdmissionNo,
		ClassName:   ns.ClassName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ns.ParentID != nil {
		stu.ParentID = null.IntFrom(*ns.ParentID)
	}
	return svc.repo.CreateStudent(stu)
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetByID(id int) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) Update(id int, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	orig.Name = us.Name
	orig.ClassName = us.ClassName
	if us.ParentID != nil {
		if *us.ParentID > 0 {
			orig.ParentID = null.IntFrom(*us.ParentID)
		} else {
			orig.ParentID.Valid = false
		}
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(orig)
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteStudentsByID(ids...)
}
