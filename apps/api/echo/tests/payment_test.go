package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/bahati/elimu/core/payment"
	"github.com/bahati/elimu/core/user"
	testutil "github.com/bahati/elimu/tests"
)

func Test_paymentApi_create_notifiesParents(t *testing.T) {
	db.Reset()
	pushSvc.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	parent1 := testutil.CreateParent(t, usrRepo, "Parent Un", "parent1", "p1@test.cd", "key-1")
	parent2 := testutil.CreateParent(t, usrRepo, "Parent Deux", "parent2", "p2@test.cd", "") // no push channel
	stu1 := testutil.CreateStudent(t, stuRepo, "Eleve Un", "adm001", "5A", &parent1.ID)
	stu2 := testutil.CreateStudent(t, stuRepo, "Eleve Deux", "adm002", "5A", &parent2.ID)
	stu3 := testutil.CreateStudent(t, stuRepo, "Eleve Trois", "adm003", "5B", nil) // no parent
	adminToken := getToken(t, admin)

	body := []byte(fmt.Sprintf(
		`{"title": "Tuition Q1", "amount": 150.5, "due_date": "2026-10-01T00:00:00Z", "student_ids": [%d, %d, %d]}`,
		stu1.ID, stu2.ID, stu3.ID,
	))
	req, rec := newAuthRequest(http.MethodPost, "/api/payments", adminToken, body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created payment.Payment
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(created.Assignments) != 3 {
		t.Errorf("created %d assignments; want 3", len(created.Assignments))
	}

	// only the parent holding a notification key is notified
	jobs := waitForDeliveries(t, 1)
	if len(jobs) != 1 {
		t.Fatalf("delivered %d jobs; want 1", len(jobs))
	}
	job := jobs[0]
	if job.Recipient.ID != parent1.ID {
		t.Errorf("recipient = %d; want %d", job.Recipient.ID, parent1.ID)
	}
	if job.Event.Name() != "payment.created" {
		t.Errorf("event = %q; want %q", job.Event.Name(), "payment.created")
	}
	if job.Event.EntityID != created.ID || job.Event.Title != "Tuition Q1" {
		t.Errorf("event payload = %+v; want payment %d %q", job.Event, created.ID, "Tuition Q1")
	}
}

func Test_paymentApi_create_validation(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "no students", body: []byte(`{"title": "Tuition", "amount": 100, "due_date": "2026-10-01T00:00:00Z", "student_ids": []}`),
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, errorResponse{
				Message: "invalid input",
				Errors:  map[string][]string{"student_ids": {"student_ids must contain at least 1 item"}},
			}),
		},
		{
			name: "amount must be positive", body: []byte(`{"title": "Tuition", "amount": -5, "due_date": "2026-10-01T00:00:00Z", "student_ids": [1]}`),
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, errorResponse{
				Message: "invalid input",
				Errors:  map[string][]string{"amount": {"amount must be greater than 0"}},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/payments", adminToken, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_paymentApi_retrieve(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher1", "teacher@test.cd", "", user.RoleTeacher, true)
	stu := testutil.CreateStudent(t, stuRepo, "Eleve Un", "adm001", "5A", nil)
	p := testutil.CreatePayment(t, payRepo, "Tuition Q1", 150.5, stu.ID)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/api/payments/" + strconv.Itoa(p.ID), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errAuth)},
		{
			name: "Admin required", path: "/api/payments/" + strconv.Itoa(p.ID), token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbid),
		},
		{name: "retrieve", path: "/api/payments/" + strconv.Itoa(p.ID), token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, p)},
		{
			name: "unknown payment is 404", path: "/api/payments/999", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errorResponse{Message: "payment not found"}),
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

func Test_paymentApi_destroy(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	stu := testutil.CreateStudent(t, stuRepo, "Eleve Un", "adm001", "5A", nil)
	p := testutil.CreatePayment(t, payRepo, "Tuition Q1", 150.5, stu.ID)

	req, rec := newAuthRequest(http.MethodDelete, "/api/payments/"+strconv.Itoa(p.ID), getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d; want %d", rec.Code, http.StatusNoContent)
	}

	if _, err := payRepo.GetPaymentByID(p.ID); err != payment.ErrNotFound {
		t.Errorf("GetPaymentByID() err = %v; want %v", err, payment.ErrNotFound)
	}
}
