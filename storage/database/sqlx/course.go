package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teachershub/backend/core/course"
)

type dbCourse struct {
	ID            int         `db:"id"`
	Name          string      `db:"name"`
	Title         null.String `db:"title"`
	Description   null.String `db:"description"`
	Duration      int         `db:"duration"`
	TotalEnrolled int         `db:"total_enrolled"`
	Organization  null.String `db:"organization"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (c dbCourse) unpack() course.Course {
	return course.Course{
		ID:            c.ID,
		Name:          c.Name,
		Title:         c.Title.String,
		Description:   c.Description.String,
		Duration:      c.Duration,
		TotalEnrolled: c.TotalEnrolled,
		Organization:  c.Organization.String,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type dbModule struct {
	ID        int         `db:"id"`
	CourseID  int         `db:"course_id"`
	Name      string      `db:"name"`
	MediaURL  null.String `db:"media_url"`
	CreatedAt time.Time   `db:"created_at"`
}

func (m dbModule) unpack() course.Module {
	return course.Module{
		ID:        m.ID,
		CourseID:  m.CourseID,
		Name:      m.Name,
		MediaURL:  m.MediaURL.String,
		CreatedAt: m.CreatedAt,
	}
}

const courseColumns = "id, name, title, description, duration, total_enrolled, organization, created_at, updated_at"

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

// trapUniqueErr maps a psql unique violation to the given sentinel.
func trapUniqueErr(err, sentinel error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == "23505" {
		return sentinel
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CheckNameUniqueness(ctx context.Context, name string, excludedCourses ...course.Course) error {
	query := "SELECT EXISTS (SELECT 1 FROM courses WHERE name = ?)"
	args := []interface{}{name}

	if len(excludedCourses) > 0 {
		ids := make([]int, 0, len(excludedCourses))
		for _, crs := range excludedCourses {
			ids = append(ids, crs.ID)
		}
		var err error
		query, args, err = sqlx.In("SELECT EXISTS (SELECT 1 FROM courses WHERE name = ? AND id NOT IN (?))", name, ids)
		if err != nil {
			return errors.Wrap(err, "expanding uniqueness query")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking course name uniqueness")
	}
	if exists {
		return course.ErrNameExists
	}
	return nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	err := repo.db.QueryRowContext(
		ctx,
		`INSERT INTO courses (name, title, description, duration, organization, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		crs.Name,
		null.NewString(crs.Title, crs.Title != ""),
		null.NewString(crs.Description, crs.Description != ""),
		crs.Duration,
		null.NewString(crs.Organization, crs.Organization != ""),
		crs.CreatedAt.UTC(),
		crs.UpdatedAt.UTC(),
	).Scan(&crs.ID)
	if err != nil {
		return course.Course{}, trapUniqueErr(err, course.ErrNameExists, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	var crs dbCourse
	if err := repo.db.GetContext(ctx, &crs, "SELECT "+courseColumns+" FROM courses WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	return crs.unpack(), nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var rows []dbCourse
	if err := repo.db.SelectContext(ctx, &rows, "SELECT "+courseColumns+" FROM courses ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, crs := range rows {
		courses = append(courses, crs.unpack())
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	var updated dbCourse
	err := repo.db.QueryRowxContext(
		ctx,
		`UPDATE courses
		 SET name = $1, title = $2, description = $3, duration = $4, organization = $5, updated_at = $6
		 WHERE id = $7
		 RETURNING `+courseColumns,
		crs.Name,
		null.NewString(crs.Title, crs.Title != ""),
		null.NewString(crs.Description, crs.Description != ""),
		crs.Duration,
		null.NewString(crs.Organization, crs.Organization != ""),
		crs.UpdatedAt.UTC(),
		crs.ID,
	).StructScan(&updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, trapUniqueErr(err, course.ErrNameExists, "updating course")
	}
	return updated.unpack(), nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if cnt == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo courseRepository) CreateModule(ctx context.Context, mod course.Module) (course.Module, error) {
	err := repo.db.QueryRowContext(
		ctx,
		`INSERT INTO course_modules (course_id, name, media_url, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		mod.CourseID,
		mod.Name,
		null.NewString(mod.MediaURL, mod.MediaURL != ""),
		mod.CreatedAt.UTC(),
	).Scan(&mod.ID)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == "23503" {
			return course.Module{}, course.ErrNotFound
		}
		return course.Module{}, errors.Wrap(err, "inserting course module")
	}
	return mod, nil
}

func (repo courseRepository) QueryCourseModules(ctx context.Context, courseID int) ([]course.Module, error) {
	var rows []dbModule
	err := repo.db.SelectContext(
		ctx, &rows,
		"SELECT id, course_id, name, media_url, created_at FROM course_modules WHERE course_id = $1 ORDER BY id",
		courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying course modules")
	}
	modules := make([]course.Module, 0, len(rows))
	for _, mod := range rows {
		modules = append(modules, mod.unpack())
	}
	return modules, nil
}
