package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/teachershub/backend/core/course"
	"github.com/teachershub/backend/core/user"
	testutil "github.com/teachershub/backend/tests"
)

func resetRepos() {
	usrRepo.Clear()
	crsRepo.Clear()
	orgRepo.Clear()
}

func Test_courseApi_list(t *testing.T) {
	resetRepos()

	empty := marchallList(t)

	// an empty catalogue lists as 200 []
	tt := httpTest{name: "Get all (empty)", path: "/api/v1/courses", wantCode: http.StatusOK, wantData: empty}
	t.Run(tt.name, func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, tt.path)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	crs1 := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", "basics", "MIT", 12)
	crs2 := testutil.CreateCourse(t, crsRepo, "CS102", "Data Structures", "lists and trees", "MIT", 10)

	tt = httpTest{name: "Get all", path: "/api/v1/courses", wantCode: http.StatusOK, wantData: marchallList(t, crs1, crs2)}
	t.Run(tt.name, func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, tt.path)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_courseApi_retrieve(t *testing.T) {
	resetRepos()

	crs := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", "basics", "MIT", 12)

	tests := []httpTest{
		{
			name: "non-integer id rejected", path: "/api/v1/courses/lol", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "The course id should be an integer!"}),
		},
		{
			name: "not found", path: fmt.Sprintf("/api/v1/courses/%d", crs.ID+1000), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Course does not exist in database"}),
		},
		{
			name: "found", path: fmt.Sprintf("/api/v1/courses/%d", crs.ID), wantCode: http.StatusOK,
			wantData: marchallObj(t, crs),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_create(t *testing.T) {
	resetRepos()

	admin := testutil.CreateUser(t, usrRepo, "Tim", "Cook", "tim", "tim@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, usrRepo, "Jane", "Doe", "jane", "jane@test.cd", "", user.RoleUser, true)
	existing := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", "basics", "MIT", 12)

	adminToken := getToken(t, admin)
	body := func(name string, duration int) []byte {
		return marchallObj(t, course.NewCourse{
			Name:         name,
			Title:        "Operating Systems",
			Description:  "processes and memory",
			Duration:     duration,
			Organization: "MIT",
		})
	}

	tests := []httpTest{
		{
			name: "Auth required", body: body("CS201", 8), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", token: getToken(t, student), body: body("CS201", 8),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errAdminRequired),
		},
		{
			name: "malformed body", token: adminToken, body: []byte("{"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "course details not provided"}),
		},
		{
			name: "invalid name", token: adminToken, body: body("", 8), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"course_name": "enter valid course name"}),
		},
		{
			name: "invalid duration", token: adminToken, body: body("CS201", 0), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"course_duration": "enter valid course duration"}),
		},
		{
			name: "duplicate name", token: adminToken, body: body(existing.Name, 8), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"course_name": "course name already exists"}),
		},
		{name: "created", token: adminToken, body: body("CS201", 8), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/v1/courses", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var crs course.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if crs.ID == 0 || crs.Name != "CS201" || crs.Duration != 8 || crs.TotalEnrolled != 0 {
					t.Errorf("unexpected course: %+v", crs)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// rejected attempts must not leave records behind
	courses, err := crsRepo.QueryAllCourses(context.Background())
	if err != nil {
		t.Fatalf("QueryAllCourses() failed: %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("courses = %d; want 2", len(courses))
	}
}

func Test_courseApi_update(t *testing.T) {
	resetRepos()

	admin := testutil.CreateUser(t, usrRepo, "Tim", "Cook", "tim", "tim@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, usrRepo, "Jane", "Doe", "jane", "jane@test.cd", "", user.RoleUser, true)
	crs := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", "basics", "MIT", 12)
	other := testutil.CreateCourse(t, crsRepo, "CS102", "Data Structures", "lists and trees", "MIT", 10)

	adminToken := getToken(t, admin)
	path := fmt.Sprintf("/api/v1/courses/%d", crs.ID)

	wantPartial := crs
	wantPartial.Title = "Foundations of CS"

	tests := []httpTest{
		{
			name: "Auth required", path: path, body: marchallObj(t, course.UpdateCourse{Name: "CS103", Duration: 6}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", path: path, token: getToken(t, student),
			body:     marchallObj(t, course.UpdateCourse{Name: "CS103", Duration: 6}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errAdminRequired),
		},
		{
			name: "non-integer id rejected", path: "/api/v1/courses/lol", token: adminToken,
			body:     marchallObj(t, course.UpdateCourse{Name: "CS103", Duration: 6}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "The course id should be an integer!"}),
		},
		{
			name: "not found", path: fmt.Sprintf("/api/v1/courses/%d", crs.ID+1000), token: adminToken,
			body:     marchallObj(t, course.UpdateCourse{Name: "CS103", Duration: 6}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Course does not exist in database"}),
		},
		{
			name: "name taken by another course", path: path, token: adminToken,
			body:     marchallObj(t, course.UpdateCourse{Name: other.Name}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"course_name": "course name already exists"}),
		},
		{
			// empty fields keep their current values; keeping own name is not a conflict
			name: "partial update", path: path, token: adminToken,
			body:     marchallObj(t, course.UpdateCourse{Title: "Foundations of CS"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, wantPartial),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// rejected attempts must not mutate the record
	refreshed, err := crsRepo.GetCourse(context.Background(), crs.ID)
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if refreshed.Name != crs.Name || refreshed.Title != "Foundations of CS" || refreshed.Duration != crs.Duration {
		t.Errorf("unexpected course after updates: %+v", refreshed)
	}
}

func Test_courseApi_destroy(t *testing.T) {
	resetRepos()

	admin := testutil.CreateUser(t, usrRepo, "Tim", "Cook", "tim", "tim@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, usrRepo, "Jane", "Doe", "jane", "jane@test.cd", "", user.RoleUser, true)
	crs := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", "basics", "MIT", 12)
	testutil.Enroll(t, crsRepo, crs.ID, student.Username)

	adminToken := getToken(t, admin)
	path := fmt.Sprintf("/api/v1/courses/%d", crs.ID)

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: path, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errAdminRequired),
		},
		{
			name: "non-integer id rejected", path: "/api/v1/courses/lol", token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "The course id should be an integer!"}),
		},
		{
			name: "deleted", path: path, token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"message": "Course deleted!"}),
		},
		{
			name: "delete is not idempotent", path: path, token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Course does not exist in database"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// enrollments are gone with the course
	enrolled, err := crsRepo.IsEnrolled(context.Background(), student.Username, crs.ID)
	if err != nil {
		t.Fatalf("IsEnrolled() failed: %v", err)
	}
	if enrolled {
		t.Error("enrollment survived course deletion")
	}
}

func Test_courseApi_enroll(t *testing.T) {
	resetRepos()

	student := testutil.CreateUser(t, usrRepo, "Jane", "Doe", "jane", "jane@test.cd", "", user.RoleUser, true)
	buddy := testutil.CreateUser(t, usrRepo, "John", "Doe", "john", "john@test.cd", "", user.RoleUser, true)
	crs := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", "basics", "MIT", 12)

	studentToken := getToken(t, student)
	path := fmt.Sprintf("/api/v1/courses/%d/enroll", crs.ID)

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "non-integer id rejected", path: "/api/v1/courses/lol/enroll", token: studentToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "The course id should be an integer!"}),
		},
		{
			name: "course not found", path: fmt.Sprintf("/api/v1/courses/%d/enroll", crs.ID+1000), token: studentToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Course does not exist in database"}),
		},
		{
			name: "enrolled", path: path, token: studentToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"message": "successfully enrolled"}),
		},
		{
			name: "at most one enrollment per user", path: path, token: studentToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "already enrolled for this course"}),
		},
		{
			name: "another user may enroll", path: path, token: getToken(t, buddy),
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"message": "successfully enrolled"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	refreshed, err := crsRepo.GetCourse(context.Background(), crs.ID)
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if refreshed.TotalEnrolled != 2 {
		t.Errorf("TotalEnrolled = %d; want 2", refreshed.TotalEnrolled)
	}
}

func Test_courseApi_modules(t *testing.T) {
	resetRepos()

	admin := testutil.CreateUser(t, usrRepo, "Tim", "Cook", "tim", "tim@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, usrRepo, "Jane", "Doe", "jane", "jane@test.cd", "", user.RoleUser, true)
	crs := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", "basics", "MIT", 12)

	adminToken := getToken(t, admin)
	path := fmt.Sprintf("/api/v1/courses/%d/modules", crs.ID)
	body := marchallObj(t, course.NewModule{Name: "Week 1", MediaURL: "https://media.test.cd/cs101/week1.mp4"})

	tests := []httpTest{
		{
			name: "list (empty)", method: http.MethodGet, path: path,
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
		{
			name: "Auth required", method: http.MethodPost, path: path, body: body,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", method: http.MethodPost, path: path, token: getToken(t, student), body: body,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errAdminRequired),
		},
		{
			name: "missing name", method: http.MethodPost, path: path, token: adminToken,
			body:     marchallObj(t, course.NewModule{MediaURL: "https://media.test.cd/cs101/week1.mp4"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"module_name": "this field is required"}),
		},
		{
			name: "course not found", method: http.MethodPost, path: fmt.Sprintf("/api/v1/courses/%d/modules", crs.ID+1000),
			token: adminToken, body: body,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Course does not exist in database"}),
		},
		{name: "added", method: http.MethodPost, path: path, token: adminToken, body: body, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var mod course.Module
				if err := json.Unmarshal(rec.Body.Bytes(), &mod); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if mod.ID == 0 || mod.CourseID != crs.ID || mod.Name != "Week 1" {
					t.Errorf("unexpected module: %+v", mod)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	modules, err := crsRepo.QueryCourseModules(context.Background(), crs.ID)
	if err != nil {
		t.Fatalf("QueryCourseModules() failed: %v", err)
	}
	if len(modules) != 1 {
		t.Errorf("modules = %d; want 1", len(modules))
	}
}
