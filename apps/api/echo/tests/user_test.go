package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	echoapi "github.com/bahati/elimu/apps/api/echo"
	"github.com/bahati/elimu/core/user"
	testutil "github.com/bahati/elimu/tests"
)

func Test_userApi_login(t *testing.T) {
	db.Reset()

	testutil.CreateUser(t, usrRepo, "Awe Mbuyi", "awembuyi", "awe@test.cd", "LeMot2Passe", user.RoleTeacher, true)
	testutil.CreateUser(t, usrRepo, "Ben Kali", "benkali", "ben@test.cd", "LeMot2Passe", user.RoleTeacher, false)

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, errorResponse{
				Message: "invalid input",
				Errors: map[string][]string{
					"username": {"username is a required field"},
					"password": {"password is a required field"},
				},
			}),
		},
		{
			name: "unknown user", body: []byte(`{"username": "lol", "password": "lol"}`), wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, errorResponse{Message: "invalid credentials"}),
		},
		{
			name: "wrong password", body: []byte(`{"username": "awembuyi", "password": "lol"}`), wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, errorResponse{Message: "invalid credentials"}),
		},
		{
			name: "deactivated account", body: []byte(`{"username": "benkali", "password": "LeMot2Passe"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errorResponse{Message: "account deactivated"}),
		},
		{name: "login with username", body: []byte(`{"username": "awembuyi", "password": "LeMot2Passe"}`), wantCode: http.StatusOK},
		{name: "login with email", body: []byte(`{"username": "awe@test.cd", "password": "LeMot2Passe"}`), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d; want %d", rec.Code, tt.wantCode)
			}
			if !regexpMatchToken(rec.Body.Bytes()) {
				t.Errorf("body has no token: %s", rec.Body.String())
			}
		})
	}
}

func regexpMatchToken(b []byte) bool {
	// {"token":"xx.yy.zz"}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(b, &res); err != nil {
		return false
	}
	return len(res.Token) > 0
}

func Test_userApi_userQuery(t *testing.T) {
	db.Reset()

	path := func(search string, isActive *bool, roles ...user.Role) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		for _, r := range roles {
			v.Add("role", string(r))
		}
		return "/api/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher1", "teacher@test.cd", "", user.RoleTeacher, true)
	parent := testutil.CreateParent(t, usrRepo, "Parent", "parent1", "parent@test.cd", "key-1")
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog01", "ndog@test.cd", "", user.RoleStudent, false)

	adminToken := getToken(t, admin)
	empty := marchallList(t)

	tests := []httpTest{
		{name: "Auth required", path: "/api/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errAuth)},
		{
			name: "Admin required", path: "/api/users", token: getToken(t, teacher), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbid),
		},
		{
			name: "Get all", path: path("", nil) + "&ordering=id", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, admin, teacher, parent, naughty),
		},
		{name: "search (unknown)", path: path("lol", nil), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{
			name: "search=tea", path: path("tea", nil), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, teacher),
		},
		{
			name: "role=parent", path: path("", nil, user.RoleParent), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, parent),
		},
		{
			name: "is_active=false", path: path("", bPtr(false)), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, naughty),
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

func Test_userApi_register(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher1", "teacher@test.cd", "", user.RoleTeacher, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "Auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errAuth),
		},
		{
			name: "Admin required", body: []byte(`{}`), token: getToken(t, teacher), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbid),
		},
		{
			name: "password mismatch", token: adminToken, wantCode: http.StatusUnprocessableEntity,
			body: []byte(`{"name": "P", "username": "parent9", "email": "p9@test.cd", "password": "LeMot2Passe", "password_confirm": "nope"}`),
			wantData: marchallObj(t, errorResponse{
				Message: "invalid input",
				Errors:  map[string][]string{"password_confirm": {"password_confirm must be equal to Password"}},
			}),
		},
		{
			name: "duplicate username", token: adminToken, wantCode: http.StatusUnprocessableEntity,
			body: []byte(`{"name": "T", "username": "teacher1", "email": "t9@test.cd", "password": "LeMot2Passe", "password_confirm": "LeMot2Passe"}`),
			wantData: marchallObj(t, errorResponse{
				Message: user.ErrUsernameExists.Error(),
				Errors:  map[string][]string{"username": {user.ErrUsernameExists.Error()}},
			}),
		},
		{
			name: "parent with notification key", token: adminToken, wantCode: http.StatusCreated,
			body: []byte(`{"name": "Parent Neuf", "username": "parent9", "email": "p9@test.cd",` +
				` "password": "LeMot2Passe", "password_confirm": "LeMot2Passe", "role": "parent", "notification_key": "key-9"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d; want %d; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var created user.User
			if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if !created.IsParent() || !created.IsNotifiable() {
				t.Errorf("created user is not a notifiable parent: %+v", created)
			}
		})
	}
}

func Test_userApi_update(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	parent := testutil.CreateParent(t, usrRepo, "Parent", "parent1", "parent@test.cd", "key-1")

	adminToken := getToken(t, admin)
	parentToken := getToken(t, parent)
	idPath := func(id int) string { return "/api/users/" + strconv.Itoa(id) }

	tests := []httpTest{
		{
			name: "others cannot be updated by non-admin", path: idPath(admin.ID), token: parentToken,
			body: []byte(`{"name": "Hacked"}`), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errorResponse{Message: "not found"}),
		},
		{
			name: "role change denied to non-admin", path: idPath(parent.ID), token: parentToken,
			body: []byte(`{"role": "admin"}`), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbid),
		},
		{
			name: "own name change allowed", path: idPath(parent.ID), token: parentToken,
			body: []byte(`{"name": "Parent Uno"}`), wantCode: http.StatusOK,
		},
		{
			name: "admin clears notification key", path: idPath(parent.ID), token: adminToken,
			body: []byte(`{"notification_key": ""}`), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
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

	// the cleared key makes the parent ineligible for push delivery
	refreshed, err := usrRepo.GetUserByID(parent.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if refreshed.IsNotifiable() {
		t.Error("parent still notifiable after clearing the key")
	}
}

func Test_userApi_destroy(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.RoleAdmin, true)
	doomed := testutil.CreateUser(t, usrRepo, "Doomed", "doomed1", "doomed@test.cd", "", user.RoleStudent, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "cannot delete self", path: "/api/users/" + strconv.Itoa(admin.ID), token: adminToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbid),
		},
		{name: "delete", path: "/api/users/" + strconv.Itoa(doomed.ID), token: adminToken, wantCode: http.StatusNoContent},
		{
			name: "already gone", path: "/api/users/" + strconv.Itoa(doomed.ID), token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errorResponse{Message: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d; want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	db.Reset()

	usr := testutil.CreateUser(t, usrRepo, "Awe Mbuyi", "awembuyi", "awe@test.cd", "", user.RoleTeacher, true)

	t.Run("fresh token is refreshed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/users/token-refresh", getToken(t, usr))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if !regexpMatchToken(rec.Body.Bytes()) {
			t.Errorf("body has no token: %s", rec.Body.String())
		}
	})

	t.Run("stale origIat is rejected", func(t *testing.T) {
		staleIat := time.Now().Add(-30 * 24 * time.Hour).Unix()
		claims := echoapi.GetUserClaims(usr, staleIat)
		token, err := echoapi.GenerateToken(claims)
		if err != nil {
			t.Fatalf("GenerateToken(): %v", err)
		}
		req, rec := newAuthRequest(http.MethodPost, "/api/users/token-refresh", token)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errorResponse{Message: "refresh has expired"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}
