package pushsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/bahati/elimu/core"
	"github.com/bahati/elimu/core/notif"
)

// consoleService writes every notification to the logs instead of a real
// push gateway. Used in DEV|TEST mode.
type consoleService struct {
	logger core.Logger
}

var _ notif.Deliverer = (*consoleService)(nil)

func NewConsoleService(logger core.Logger) notif.Deliverer {
	return &consoleService{logger: logger}
}

func (svc consoleService) Deliver(_ context.Context, job notif.Job) error {
	svc.logger.Info(fmt.Sprintf(
		"push: [%s] %q -> %s (key %s)",
		job.Event.Name(), job.Event.Title, job.Recipient.Username, job.Recipient.NotificationKey.String,
	))
	return nil
}

// RecorderService records delivered jobs so tests can assert on fan-out.
type RecorderService struct {
	mu   sync.Mutex
	jobs []notif.Job

	// FailTimes makes the next N deliveries fail, to exercise retries.
	FailTimes int
}

var _ notif.Deliverer = (*RecorderService)(nil)

func NewRecorderService() *RecorderService {
	return &RecorderService{}
}

func (svc *RecorderService) Deliver(_ context.Context, job notif.Job) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.FailTimes > 0 {
		svc.FailTimes--
		return fmt.Errorf("push: delivery refused for job %s", job.ID)
	}
	svc.jobs = append(svc.jobs, job)
	return nil
}

func (svc *RecorderService) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.jobs = nil
	svc.FailTimes = 0
}

func (svc *RecorderService) Delivered() []notif.Job {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]notif.Job, len(svc.jobs))
	copy(out, svc.jobs)
	return out
}
