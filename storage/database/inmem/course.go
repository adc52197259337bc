package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/teachershub/backend/core/course"
)

// courseRepository is a mutex-guarded, map-backed course.Repository and
// course.Ledger. It mirrors the SQL schema's invariants: unique course
// names, monotonically increasing ids that are never reused, a unique
// (course, username) enrollment pair and cascade deletes.
type courseRepository struct {
	mu          sync.Mutex
	courses     map[int]course.Course
	modules     map[int]course.Module
	enrollments map[int]map[string]course.Enrollment // courseID -> username
	coursePK    int
	modulePK    int
}

var (
	_ course.Repository = (*courseRepository)(nil)
	_ course.Ledger     = (*courseRepository)(nil)
)

func NewCourseRepository() *courseRepository {
	return &courseRepository{
		courses:     make(map[int]course.Course),
		modules:     make(map[int]course.Module),
		enrollments: make(map[int]map[string]course.Enrollment),
	}
}

func (repo *courseRepository) Clear() {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.courses = make(map[int]course.Course)
	repo.modules = make(map[int]course.Module)
	repo.enrollments = make(map[int]map[string]course.Enrollment)
}

func (repo *courseRepository) checkNameUniqueness(name string, excludedCourses ...course.Course) error {
	excluded := make(map[int]bool, len(excludedCourses))
	for _, crs := range excludedCourses {
		excluded[crs.ID] = true
	}
	for _, crs := range repo.courses {
		if crs.Name == name && !excluded[crs.ID] {
			return course.ErrNameExists
		}
	}
	return nil
}

func (repo *courseRepository) CheckNameUniqueness(_ context.Context, name string, excludedCourses ...course.Course) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.checkNameUniqueness(name, excludedCourses...)
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err := repo.checkNameUniqueness(crs.Name); err != nil {
		return course.Course{}, err
	}
	repo.coursePK++
	crs.ID = repo.coursePK
	repo.courses[crs.ID] = crs
	return crs, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id int) (course.Course, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	crs, ok := repo.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context) ([]course.Course, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	courses := make([]course.Course, 0, len(repo.courses))
	for _, crs := range repo.courses {
		courses = append(courses, crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	orig, ok := repo.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if err := repo.checkNameUniqueness(crs.Name, orig); err != nil {
		return course.Course{}, err
	}
	crs.TotalEnrolled = orig.TotalEnrolled
	crs.CreatedAt = orig.CreatedAt
	repo.courses[crs.ID] = crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.courses[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.courses, id)
	delete(repo.enrollments, id)
	for modID, mod := range repo.modules {
		if mod.CourseID == id {
			delete(repo.modules, modID)
		}
	}
	return nil
}

func (repo *courseRepository) CreateModule(_ context.Context, mod course.Module) (course.Module, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.courses[mod.CourseID]; !ok {
		return course.Module{}, course.ErrNotFound
	}
	repo.modulePK++
	mod.ID = repo.modulePK
	repo.modules[mod.ID] = mod
	return mod, nil
}

func (repo *courseRepository) QueryCourseModules(_ context.Context, courseID int) ([]course.Module, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	modules := make([]course.Module, 0)
	for _, mod := range repo.modules {
		if mod.CourseID == courseID {
			modules = append(modules, mod)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })
	return modules, nil
}

func (repo *courseRepository) IsEnrolled(_ context.Context, username string, courseID int) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	_, ok := repo.enrollments[courseID][username]
	return ok, nil
}

func (repo *courseRepository) Enroll(_ context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	crs, ok := repo.courses[enr.CourseID]
	if !ok {
		return course.Enrollment{}, course.ErrNotFound
	}
	if _, ok = repo.enrollments[enr.CourseID][enr.Username]; ok {
		return course.Enrollment{}, course.ErrAlreadyEnrolled
	}
	if repo.enrollments[enr.CourseID] == nil {
		repo.enrollments[enr.CourseID] = make(map[string]course.Enrollment)
	}
	repo.enrollments[enr.CourseID][enr.Username] = enr

	crs.TotalEnrolled++
	repo.courses[crs.ID] = crs
	return enr, nil
}
