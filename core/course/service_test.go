package course_test

import (
	"context"
	"sync"
	"testing"

	"github.com/teachershub/backend/core/course"
	inmemdb "github.com/teachershub/backend/storage/database/inmem"
)

func setup() course.Service {
	repo := inmemdb.NewCourseRepository()
	return course.NewService(repo, repo)
}

func Test_service_CreateGet(t *testing.T) {
	svc := setup()
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "CS101", Title: "Intro to CS", Duration: 12, Organization: "MIT"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if crs.ID == 0 {
		t.Fatal("Create() assigned no id")
	}

	got, err := svc.GetByID(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got != crs {
		t.Errorf("GetByID() = %+v, want %+v", got, crs)
	}

	if _, err = svc.Create(ctx, course.NewCourse{Name: "CS101", Duration: 8}); err != course.ErrNameExists {
		t.Errorf("Create() error = %v, want %v", err, course.ErrNameExists)
	}

	if _, err = svc.GetByID(ctx, crs.ID+100); err != course.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, course.ErrNotFound)
	}
}

func Test_service_Update(t *testing.T) {
	svc := setup()
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "CS101", Duration: 12})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	updated, err := svc.Update(ctx, crs.ID, course.UpdateCourse{Name: "CS102", Title: "Data Structures", Duration: 10})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Name != "CS102" || updated.Title != "Data Structures" || updated.Duration != 10 {
		t.Errorf("Update() = %+v", updated)
	}

	if _, err = svc.Update(ctx, crs.ID+100, course.UpdateCourse{Name: "CS103", Duration: 10}); err != course.ErrNotFound {
		t.Errorf("Update() error = %v, want %v", err, course.ErrNotFound)
	}
}

func Test_service_Delete(t *testing.T) {
	svc := setup()
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "CS101", Duration: 12})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err = svc.Enroll(ctx, "jane", crs.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	if _, err = svc.AddModule(ctx, crs.ID, course.NewModule{Name: "Week 1"}); err != nil {
		t.Fatalf("AddModule() failed: %v", err)
	}

	if err = svc.Delete(ctx, crs.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err = svc.Delete(ctx, crs.ID); err != course.ErrNotFound {
		t.Errorf("Delete() error = %v, want %v", err, course.ErrNotFound)
	}

	// enrollments and modules go with the course
	enrolled, err := svc.IsEnrolled(ctx, "jane", crs.ID)
	if err != nil {
		t.Fatalf("IsEnrolled() failed: %v", err)
	}
	if enrolled {
		t.Error("enrollment survived course deletion")
	}
	if _, err = svc.QueryModules(ctx, crs.ID); err != course.ErrNotFound {
		t.Errorf("QueryModules() error = %v, want %v", err, course.ErrNotFound)
	}

	// deleted ids are never reused
	crs2, err := svc.Create(ctx, course.NewCourse{Name: "CS102", Duration: 10})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if crs2.ID == crs.ID {
		t.Errorf("id %d was reused", crs.ID)
	}
}

func Test_service_Enroll(t *testing.T) {
	svc := setup()
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "CS101", Duration: 12})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err = svc.Enroll(ctx, "jane", crs.ID+100); err != course.ErrNotFound {
		t.Errorf("Enroll() error = %v, want %v", err, course.ErrNotFound)
	}

	if _, err = svc.Enroll(ctx, "jane", crs.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	if _, err = svc.Enroll(ctx, "jane", crs.ID); err != course.ErrAlreadyEnrolled {
		t.Errorf("Enroll() error = %v, want %v", err, course.ErrAlreadyEnrolled)
	}

	enrolled, err := svc.IsEnrolled(ctx, "jane", crs.ID)
	if err != nil {
		t.Fatalf("IsEnrolled() failed: %v", err)
	}
	if !enrolled {
		t.Error("IsEnrolled() = false after Enroll()")
	}

	got, err := svc.GetByID(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.TotalEnrolled != 1 {
		t.Errorf("TotalEnrolled = %d, want 1", got.TotalEnrolled)
	}
}

// concurrent attempts on the same (user, course) pair must yield exactly
// one enrollment.
func Test_service_Enroll_concurrent(t *testing.T) {
	svc := setup()
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "CS101", Duration: 12})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Enroll(ctx, "jane", crs.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, duplicated int
	for err := range errs {
		switch err {
		case nil:
			succeeded++
		case course.ErrAlreadyEnrolled:
			duplicated++
		default:
			t.Errorf("Enroll() error = %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("successful enrollments = %d, want 1", succeeded)
	}
	if duplicated != attempts-1 {
		t.Errorf("duplicate enrollments = %d, want %d", duplicated, attempts-1)
	}

	got, err := svc.GetByID(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.TotalEnrolled != 1 {
		t.Errorf("TotalEnrolled = %d, want 1", got.TotalEnrolled)
	}
}

func Test_service_Modules(t *testing.T) {
	svc := setup()
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Name: "CS101", Duration: 12})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err = svc.AddModule(ctx, crs.ID+100, course.NewModule{Name: "Week 1"}); err != course.ErrNotFound {
		t.Errorf("AddModule() error = %v, want %v", err, course.ErrNotFound)
	}

	mod, err := svc.AddModule(ctx, crs.ID, course.NewModule{Name: "Week 1", MediaURL: "https://media.test.cd/w1.mp4"})
	if err != nil {
		t.Fatalf("AddModule() failed: %v", err)
	}
	if mod.ID == 0 || mod.CourseID != crs.ID {
		t.Errorf("AddModule() = %+v", mod)
	}

	modules, err := svc.QueryModules(ctx, crs.ID)
	if err != nil {
		t.Fatalf("QueryModules() failed: %v", err)
	}
	if len(modules) != 1 || modules[0] != mod {
		t.Errorf("QueryModules() = %+v", modules)
	}
}
