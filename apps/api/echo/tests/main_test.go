package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/bahati/elimu/apps/api/echo"
	"github.com/bahati/elimu/core/notif"
	"github.com/bahati/elimu/core/payment"
	"github.com/bahati/elimu/core/student"
	"github.com/bahati/elimu/core/task"
	"github.com/bahati/elimu/core/user"
	emailsvc "github.com/bahati/elimu/services/email"
	pushsvc "github.com/bahati/elimu/services/push"
	inmemdb "github.com/bahati/elimu/storage/database/inmem"
	testutil "github.com/bahati/elimu/tests/logger"
)

var (
	db      *inmemdb.DB
	app     echoapi.Server
	usrRepo user.Repository
	stuRepo student.Repository
	payRepo payment.Repository
	tskRepo task.Repository

	hub       *notif.Hub
	pushSvc   *pushsvc.RecorderService
	queue     *notif.Queue
	stopPool  context.CancelFunc
	poolDone  chan struct{}
	logRecs   *testutil.Logger
	errAuth   = errorResponse{Message: "Unauthorized."}
	errForbid = errorResponse{Message: "permission denied"}
)

func TestMain(m *testing.M) {
	// set up DB & repos
	db = inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	stuRepo = inmemdb.NewStudentRepository(db)
	payRepo = inmemdb.NewPaymentRepository(db)
	tskRepo = inmemdb.NewTaskRepository(db)

	// set up services
	logRecs = testutil.NewLogger()
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewService(usrRepo, mailSvc)
	stuSvc := student.NewService(stuRepo)

	// notification pipeline
	queue = notif.NewQueue(64, 100*time.Millisecond, logRecs)
	dispatcher := notif.NewDispatcher(queue, inmemdb.NewAssignmentSource(db), stuRepo, usrRepo, logRecs)

	hub = notif.NewHub(logRecs)
	hub.Subscribe(dispatcher)

	pushSvc = pushsvc.NewRecorderService()
	pool := notif.NewWorkerPool(queue, pushSvc, 1, logRecs)
	var poolCtx context.Context
	poolCtx, stopPool = context.WithCancel(context.Background())
	poolDone = make(chan struct{})
	go func() {
		defer close(poolDone)
		pool.Run(poolCtx)
	}()

	paySvc := payment.NewService(payRepo, hub)
	tskSvc := task.NewService(tskRepo, hub)

	// set up server
	app = echoapi.NewServer(
		&echoapi.Options{
			DisableReqLogs: true,
			Logger:         logRecs,
			UserSvc:        usrSvc,
			StudentSvc:     stuSvc,
			PaymentSvc:     paySvc,
			TaskSvc:        tskSvc,
		},
	)

	// run tests
	code := m.Run()

	stopPool()
	<-poolDone
	os.Exit(code)
}

type errorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// waitForDeliveries blocks until the push recorder has seen n jobs in total.
func waitForDeliveries(t *testing.T, n int) []notif.Job {
	t.Helper()

	hub.Wait()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if jobs := pushSvc.Delivered(); len(jobs) >= n {
			return jobs
		}
		time.Sleep(5 * time.Millisecond)
	}
	jobs := pushSvc.Delivered()
	t.Fatalf("delivered %d jobs in time; want %d", len(jobs), n)
	return jobs
}
