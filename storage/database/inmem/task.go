package inmemdb

import (
	"github.com/bahati/elimu/core/task"
)

var (
	taskPKCount           int
	taskAssignmentPKCount int
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) CreateTask(t task.Task, studentIDs []int) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	taskPKCount++
	t.ID = taskPKCount

	for _, sid := range studentIDs {
		taskAssignmentPKCount++
		t.Assignments = append(t.Assignments, task.Assignment{
			ID:        taskAssignmentPKCount,
			TaskID:    t.ID,
			StudentID: sid,
		})
	}
	repo.db.assignments[t.ID] = t.Assignments
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) QueryAllTasks() ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tasks := make([]task.Task, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (repo *taskRepository) GetTaskByID(id int) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) GetAssignments(taskID int) ([]task.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.assignments[taskID], nil
}

func (repo *taskRepository) UpdateTask(t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	t.Assignments = repo.db.assignments[t.ID]
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) DeleteTasksByID(ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
		delete(repo.db.assignments, id)
	}
	return nil
}
