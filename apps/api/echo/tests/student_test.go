package tests

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/bahati/elimu/core/user"
	testutil "github.com/bahati/elimu/tests"
)

func Test_studentApi_create(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher1", "teacher@test.cd", "", user.RoleTeacher, true)
	parent := testutil.CreateParent(t, usrRepo, "Parent", "parent1", "parent@test.cd", "key-1")
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errAuth)},
		{
			name: "Admin required", body: []byte(`{}`), token: getToken(t, teacher), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbid),
		},
		{
			name: "missing fields", body: []byte(`{"name": "Eleve Un"}`), token: adminToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, errorResponse{
				Message: "invalid input",
				Errors: map[string][]string{
					"admission_no": {"admission_no is a required field"},
					"class_name":   {"class_name is a required field"},
				},
			}),
		},
		{
			name:     "create without parent",
			body:     []byte(`{"name": "Eleve Un", "admission_no": "adm001", "class_name": "5A"}`),
			token:    adminToken,
			wantCode: http.StatusCreated,
		},
		{
			name:     "create with parent",
			body:     []byte(`{"name": "Eleve Deux", "admission_no": "adm002", "class_name": "5A", "parent_id": ` + strconv.Itoa(parent.ID) + `}`),
			token:    adminToken,
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/students", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d; want %d; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func Test_studentApi_retrieve(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher1", "teacher@test.cd", "", user.RoleTeacher, true)
	parent := testutil.CreateParent(t, usrRepo, "Parent", "parent1", "parent@test.cd", "key-1")
	stu := testutil.CreateStudent(t, stuRepo, "Eleve Un", "adm001", "5A", &parent.ID)

	tests := []httpTest{
		{
			name: "parents have no access", path: "/api/students/" + strconv.Itoa(stu.ID), token: getToken(t, parent),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbid),
		},
		{
			name: "teacher reads a student", path: "/api/students/" + strconv.Itoa(stu.ID), token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, stu),
		},
		{
			name: "unknown student is 404", path: "/api/students/999", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errorResponse{Message: "student not found"}),
		},
		{
			name: "garbage ID is 404", path: "/api/students/lol", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errorResponse{Message: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_update(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	parent := testutil.CreateParent(t, usrRepo, "Parent", "parent1", "parent@test.cd", "key-1")
	stu := testutil.CreateStudent(t, stuRepo, "Eleve Un", "adm001", "5A", nil)
	adminToken := getToken(t, admin)

	t.Run("link parent", func(t *testing.T) {
		body := []byte(`{"parent_id": ` + strconv.Itoa(parent.ID) + `}`)
		req, rec := newAuthRequest(http.MethodPut, "/api/students/"+strconv.Itoa(stu.ID), adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		refreshed, err := stuRepo.GetStudentByID(stu.ID)
		if err != nil {
			t.Fatalf("GetStudentByID() failed: %v", err)
		}
		if !refreshed.HasParent() || refreshed.ParentID.Int != parent.ID {
			t.Errorf("parent not linked: %+v", refreshed)
		}
	})

	t.Run("unlink parent", func(t *testing.T) {
		body := []byte(`{"parent_id": 0}`)
		req, rec := newAuthRequest(http.MethodPut, "/api/students/"+strconv.Itoa(stu.ID), adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var updated map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		refreshed, err := stuRepo.GetStudentByID(stu.ID)
		if err != nil {
			t.Fatalf("GetStudentByID() failed: %v", err)
		}
		if refreshed.HasParent() {
			t.Errorf("parent still linked: %+v", refreshed)
		}
	})
}
