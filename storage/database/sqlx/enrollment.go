package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/teachershub/backend/core/course"
)

type enrollmentLedger struct {
	db *sqlx.DB
}

var _ course.Ledger = (*enrollmentLedger)(nil)

func NewEnrollmentLedger(db *sqlx.DB) *enrollmentLedger {
	return &enrollmentLedger{db: db}
}

func (led enrollmentLedger) IsEnrolled(ctx context.Context, username string, courseID int) (bool, error) {
	var enrolled bool
	err := led.db.GetContext(
		ctx, &enrolled,
		"SELECT EXISTS (SELECT 1 FROM enrollments WHERE course_id = $1 AND username = $2)",
		courseID, username,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return enrolled, nil
}

// Enroll inserts the enrollment and bumps the course counter in one
// transaction. The (course_id, username) primary key makes the insert a
// no-op on a duplicate, which closes the check-then-insert race.
func (led enrollmentLedger) Enroll(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	tx, err := led.db.BeginTxx(ctx, nil)
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "starting enrollment tx")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO enrollments (course_id, username, enrolled_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		enr.CourseID, enr.Username, enr.EnrolledAt.UTC(),
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == "23503" {
			return course.Enrollment{}, course.ErrNotFound
		}
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	if cnt == 0 {
		return course.Enrollment{}, course.ErrAlreadyEnrolled
	}

	if _, err = tx.ExecContext(
		ctx,
		"UPDATE courses SET total_enrolled = total_enrolled + 1 WHERE id = $1",
		enr.CourseID,
	); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "updating enrolled count")
	}

	if err = tx.Commit(); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "committing enrollment")
	}
	return enr, nil
}
