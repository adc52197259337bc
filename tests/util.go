package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/teachershub/backend/core/course"
	"github.com/teachershub/backend/core/organization"
	"github.com/teachershub/backend/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	fname, lname, uname, email, pwd string,
	role user.Role,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FirstName: fname,
		LastName:  lname,
		Username:  uname,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	name, title, description, org string,
	duration int,
	createdAt ...time.Time,
) course.Course {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Name:         name,
		Title:        title,
		Description:  description,
		Duration:     duration,
		Organization: org,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func Enroll(t *testing.T, ledger course.Ledger, courseID int, username string) course.Enrollment {
	t.Helper()

	enr, err := ledger.Enroll(context.Background(), course.Enrollment{
		CourseID:   courseID,
		Username:   username,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}

func CreateOrganization(t *testing.T, repo organization.Repository, name, description string) organization.Organization {
	t.Helper()

	org, err := repo.CreateOrganization(context.Background(), organization.Organization{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateOrganization() failed: %v", err)
	}
	return org
}
