package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/bahati/elimu/core/task"
)

type taskRow struct {
	ID          int       `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Subject     string    `db:"subject"`
	DueDate     time.Time `db:"due_date"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row taskRow) task() task.Task {
	return task.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Subject:     row.Subject,
		DueDate:     row.DueDate,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type taskAssignmentRow struct {
	ID        int `db:"id"`
	TaskID    int `db:"task_id"`
	StudentID int `db:"student_id"`
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo taskRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return task.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// CreateTask inserts the task and its assignments in one transaction.
func (repo taskRepository) CreateTask(t task.Task, studentIDs []int) (task.Task, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return task.Task{}, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO task (title, description, subject, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err = tx.Get(&t.ID, query, t.Title, t.Description, t.Subject, t.DueDate, t.CreatedAt.UTC(), t.UpdatedAt.UTC()); err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}

	for _, sid := range studentIDs {
		a := task.Assignment{TaskID: t.ID, StudentID: sid}
		query = `INSERT INTO task_assignment (task_id, student_id) VALUES ($1, $2) RETURNING id`
		if err = tx.Get(&a.ID, query, a.TaskID, a.StudentID); err != nil {
			return task.Task{}, errors.Wrap(err, "inserting task assignment")
		}
		t.Assignments = append(t.Assignments, a)
	}

	if err = tx.Commit(); err != nil {
		return task.Task{}, errors.Wrap(err, "committing task")
	}
	return t, nil
}

func (repo taskRepository) QueryAllTasks() ([]task.Task, error) {
	var rows []taskRow
	if err := repo.db.Select(&rows, `SELECT * FROM task`); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.task())
	}
	return tasks, nil
}

func (repo taskRepository) GetTaskByID(id int) (task.Task, error) {
	var row taskRow
	if err := repo.db.Get(&row, `SELECT * FROM task WHERE id = $1`, id); err != nil {
		return task.Task{}, repo.trapNoRowsErr(err, "finding task by ID")
	}
	t := row.task()

	assignments, err := repo.GetAssignments(t.ID)
	if err != nil {
		return task.Task{}, err
	}
	t.Assignments = assignments
	return t, nil
}

func (repo taskRepository) GetAssignments(taskID int) ([]task.Assignment, error) {
	var rows []taskAssignmentRow
	if err := repo.db.Select(&rows, `SELECT * FROM task_assignment WHERE task_id = $1`, taskID); err != nil {
		return nil, errors.Wrap(err, "querying task assignments")
	}
	assignments := make([]task.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, task.Assignment(row))
	}
	return assignments, nil
}

func (repo taskRepository) UpdateTask(t task.Task) (task.Task, error) {
	query := `
		UPDATE task
		SET title = $1, description = $2, subject = $3, due_date = $4, updated_at = $5
		WHERE id = $6`
	res, err := repo.db.Exec(query, t.Title, t.Description, t.Subject, t.DueDate, t.UpdatedAt.UTC(), t.ID)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (repo taskRepository) DeleteTasksByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM task WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building task delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return nil
}
