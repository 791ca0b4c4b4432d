package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/bahati/elimu/core/student"
)

type studentRow struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	AdmissionNo string    `db:"admission_no"`
	ClassName   string    `db:"class_name"`
	ParentID    null.Int  `db:"parent_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:          row.ID,
		Name:        row.Name,
		AdmissionNo: row.AdmissionNo,
		ClassName:   row.ClassName,
		ParentID:    row.ParentID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func newStudentRow(stu student.Student) studentRow {
	return studentRow{
		ID:          stu.ID,
		Name:        stu.Name,
		AdmissionNo: stu.AdmissionNo,
		ClassName:   stu.ClassName,
		ParentID:    stu.ParentID,
		CreatedAt:   stu.CreatedAt.UTC(),
		UpdatedAt:   stu.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(stu student.Student) (student.Student, error) {
	row := newStudentRow(stu)
	query := `
		INSERT INTO student (name, admission_no, class_name, parent_id, created_at, updated_at)
		VALUES (:name, :admission_no, :class_name, :parent_id, :created_at, :updated_at)
		RETURNING id`
	stmt, err := repo.db.PrepareNamed(query)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "preparing student insert")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.Get(&row.ID, row); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return row.student(), nil
}

func (repo studentRepository) QueryAllStudents() ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.Select(&rows, `SELECT * FROM student`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(id int) (student.Student, error) {
	var row studentRow
	if err := repo.db.Get(&row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
	}
	return row.student(), nil
}

func (repo studentRepository) UpdateStudent(stu student.Student) (student.Student, error) {
	row := newStudentRow(stu)
	query := `
		UPDATE student
		SET name = :name, class_name = :class_name, parent_id = :parent_id, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExec(query, row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return row.student(), nil
}

func (repo studentRepository) DeleteStudentsByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building student delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}
