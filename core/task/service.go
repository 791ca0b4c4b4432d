package task

import (
	"time"

	"github.com/pkg/errors"

	"github.com/bahati/elimu/core/notif"
)

var ErrNotFound = errors.New("task not found")

type (
	Repository interface {
		// CreateTask persists the task and one assignment per student ID.
		CreateTask(t Task, studentIDs []int) (Task, error)
		QueryAllTasks() ([]Task, error)
		GetTaskByID(id int) (Task, error)
		GetAssignments(taskID int) ([]Assignment, error)
		UpdateTask(t Task) (Task, error)
		DeleteTasksByID(ids ...int) error
	}

	Service struct {
		repo   Repository
		events notif.Publisher
	}
)

func NewService(repo Repository, events notif.Publisher) *Service {
	return &Service{repo: repo, events: events}
}

func (svc *Service) Create(nt NewTask) (Task, error) {
	now := time.Now().UTC()
	t := Task{
		Title:       nt.Title,
		Description: nt.Description,
		Subject:     nt.Subject,
		DueDate:     nt.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t, err := svc.repo.CreateTask(t, nt.StudentIDs)
	if err != nil {
		return Task{}, err
	}
	svc.events.Publish(notif.TaskCreated(t.ID, t.Title, t.Subject))
	return t, nil
}

func (svc *Service) QueryAll() ([]Task, error) {
	return svc.repo.QueryAllTasks()
}

func (svc *Service) GetByID(id int) (Task, error) {
	return svc.repo.GetTaskByID(id)
}

func (svc *Service) Update(id int, ut UpdateTask) (Task, error) {
	orig, err := svc.repo.GetTaskByID(id)
	if err != nil {
		return Task{}, err
	}
	orig.Title = ut.Title
	orig.Subject = ut.Subject
	if ut.Description != nil {
		orig.Description = *ut.Description
	}
	if ut.DueDate != nil {
		orig.DueDate = *ut.DueDate
	}
	orig.UpdatedAt = time.Now().UTC()

	t, err := svc.repo.UpdateTask(orig)
	if err != nil {
		return Task{}, err
	}
	svc.events.Publish(notif.TaskUpdated(t.ID, t.Title, t.Subject))
	return t, nil
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteTasksByID(ids...)
}
