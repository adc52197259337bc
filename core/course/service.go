package course

import (
	"context"
	"errors"
	"time"

	"github.com/teachershub/backend/core"
)

var (
	// errors; texts double as the user-facing messages of the legacy API
	ErrNotFound        = errors.New("Course does not exist in database")
	ErrNameExists      = errors.New("course name already exists")
	ErrAlreadyEnrolled = errors.New("already enrolled for this course")
)

type (
	// Repository owns course records.
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedCourses ...Course) error
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id int) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		// UpdateCourse overwrites a course in a single conditional statement;
		// it returns ErrNotFound when the id does not exist.
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		// DeleteCourse removes a course and, by cascade, its enrollments and
		// modules; it returns ErrNotFound when the id does not exist.
		DeleteCourse(ctx context.Context, id int) error
		CreateModule(ctx context.Context, mod Module) (Module, error)
		QueryCourseModules(ctx context.Context, courseID int) ([]Module, error)
	}

	// Ledger owns the (username, course) enrollment relation.
	Ledger interface {
		IsEnrolled(ctx context.Context, username string, courseID int) (bool, error)
		// Enroll records an enrollment; the backing store enforces the
		// at-most-one invariant so concurrent attempts cannot both succeed.
		// Returns ErrAlreadyEnrolled on a duplicate, ErrNotFound when the
		// course is gone.
		Enroll(ctx context.Context, enr Enrollment) (Enrollment, error)
	}

	Service interface {
		CheckNameUniqueness(ctx context.Context, name string, exclCourses ...Course) error
		Create(ctx context.Context, nc NewCourse) (Course, error)
		GetByID(ctx context.Context, id int) (Course, error)
		QueryAll(ctx context.Context) ([]Course, error)
		Update(ctx context.Context, id int, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id int) error
		Enroll(ctx context.Context, username string, courseID int) (Enrollment, error)
		IsEnrolled(ctx context.Context, username string, courseID int) (bool, error)
		AddModule(ctx context.Context, courseID int, nm NewModule) (Module, error)
		QueryModules(ctx context.Context, courseID int) ([]Module, error)
	}

	service struct {
		repo   Repository
		ledger Ledger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, ledger Ledger) Service {
	return &service{
		repo:   repo,
		ledger: ledger,
	}
}

func (svc *service) CheckNameUniqueness(ctx context.Context, name string, exclCourses ...Course) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, exclCourses...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "course_name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Name:         nc.Name,
		Title:        nc.Title,
		Description:  nc.Description,
		Duration:     nc.Duration,
		Organization: nc.Organization,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	crs := Course{
		ID:           id,
		Name:         uc.Name,
		Title:        uc.Title,
		Description:  uc.Description,
		Duration:     uc.Duration,
		Organization: uc.Organization,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *service) Enroll(ctx context.Context, username string, courseID int) (Enrollment, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	enr := Enrollment{
		CourseID:   courseID,
		Username:   username,
		EnrolledAt: time.Now().UTC(),
	}
	return svc.ledger.Enroll(ctx, enr)
}

func (svc *service) IsEnrolled(ctx context.Context, username string, courseID int) (bool, error) {
	return svc.ledger.IsEnrolled(ctx, username, courseID)
}

func (svc *service) AddModule(ctx context.Context, courseID int, nm NewModule) (Module, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Module{}, err
	}
	mod := Module{
		CourseID:  courseID,
		Name:      nm.Name,
		MediaURL:  nm.MediaURL,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateModule(ctx, mod)
}

func (svc *service) QueryModules(ctx context.Context, courseID int) ([]Module, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourseModules(ctx, courseID)
}
