package course

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/teachershub/backend/core"
)

// Course is a course record. Identifiers are assigned by the store on
// creation, are immutable and are never reused after deletion.
// JSON field order matches the legacy API contract.
type Course struct {
	ID            int       `json:"course_id"`
	Name          string    `json:"course_name"`
	Title         string    `json:"course_title"`
	Description   string    `json:"course_description"`
	Duration      int       `json:"course_duration"`
	TotalEnrolled int       `json:"total_enrolled"`
	Organization  string    `json:"organization"`
	CreatedAt     time.Time `json:"-"` // UTC
	UpdatedAt     time.Time `json:"-"` // UTC
}

// Enrollment links a username to a course; at most one exists per pair.
type Enrollment struct {
	CourseID   int       `json:"course_id"`
	Username   string    `json:"username"`
	EnrolledAt time.Time `json:"enrolled_at"` // UTC
}

// Module is a content unit attached to a course. The media file itself is
// uploaded through an external collaborator; only its URL is kept here.
type Module struct {
	ID        int       `json:"module_id"`
	CourseID  int       `json:"course_id"`
	Name      string    `json:"module_name"`
	MediaURL  string    `json:"media_url"`
	CreatedAt time.Time `json:"-"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name         string `json:"course_name" validate:"coursename"`
	Title        string `json:"course_title"`
	Description  string `json:"course_description"`
	Duration     int    `json:"course_duration" validate:"coursedur"`
	Organization string `json:"organization"`
}

func (nc *NewCourse) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Organization = core.CleanString(nc.Organization)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, nc.Name)
}

// UpdateCourse defines what information may be provided to modify an
// existing Course. Empty fields keep their current values.
type UpdateCourse struct {
	Name         string `json:"course_name" validate:"coursename"`
	Title        string `json:"course_title"`
	Description  string `json:"course_description"`
	Duration     int    `json:"course_duration" validate:"coursedur"`
	Organization string `json:"organization"`
}

func (uc *UpdateCourse) Validate(ctx context.Context, origCrs Course, validate *validator.Validate, svc Service) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = origCrs.Name
	}

	title := core.CleanString(uc.Title)
	if title != "" {
		uc.Title = title
	} else {
		uc.Title = origCrs.Title
	}

	desc := core.CleanString(uc.Description)
	if desc != "" {
		uc.Description = desc
	} else {
		uc.Description = origCrs.Description
	}

	org := core.CleanString(uc.Organization)
	if org != "" {
		uc.Organization = org
	} else {
		uc.Organization = origCrs.Organization
	}

	if uc.Duration == 0 {
		uc.Duration = origCrs.Duration
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, uc.Name, origCrs)
}

// NewModule contains information needed to attach a Module to a Course.
type NewModule struct {
	Name     string `json:"module_name" validate:"required"`
	MediaURL string `json:"media_url" validate:"omitempty,url"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.MediaURL = core.CleanString(nm.MediaURL)
	return validate.Struct(nm)
}
