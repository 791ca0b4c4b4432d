package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/bahati/elimu/apps/api/echo"
	"github.com/bahati/elimu/core"
	"github.com/bahati/elimu/core/notif"
	"github.com/bahati/elimu/core/payment"
	"github.com/bahati/elimu/core/student"
	"github.com/bahati/elimu/core/task"
	"github.com/bahati/elimu/core/user"
	emailsvc "github.com/bahati/elimu/services/email"
	logsvc "github.com/bahati/elimu/services/logger"
	pushsvc "github.com/bahati/elimu/services/push"
	"github.com/bahati/elimu/storage/database"
	sqlxrepos "github.com/bahati/elimu/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	conf := core.Conf

	// set up logger
	var logger core.Logger
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	stuRepo := sqlxrepos.NewStudentRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc)
	stuSvc := student.NewService(stuRepo)

	// set up notification pipeline
	queue := notif.NewQueue(conf.Notif.QueueSize, conf.Notif.EnqueueTimeout, logger)
	dispatcher := notif.NewDispatcher(queue, sqlxrepos.NewAssignmentSource(db), stuRepo, usrRepo, logger)

	hub := notif.NewHub(logger)
	hub.Subscribe(dispatcher)

	pool := notif.NewWorkerPool(queue, pushsvc.NewConsoleService(logger), conf.Notif.Workers, logger)
	poolCtx, stopPool := context.WithCancel(context.Background())
	poolDone := make(chan struct{})
	go func() {
		defer close(poolDone)
		pool.Run(poolCtx)
	}()

	paySvc := payment.NewService(sqlxrepos.NewPaymentRepository(db), hub)
	taskSvc := task.NewService(sqlxrepos.NewTaskRepository(db), hub)

	// start API server
	logger.Info(fmt.Sprintf("%s API initializing : version %q", conf.AppName, conf.Build))
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:       conf.Server.Addr,
			Logger:     logger,
			UserSvc:    usrSvc,
			StudentSvc: stuSvc,
			PaymentSvc: paySvc,
			TaskSvc:    taskSvc,
			SignalShutdown: func() {
				shutdown <- syscall.SIGTERM
			},
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.Start()
	}()

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = app.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}

		// wait for in-flight listeners, then let the workers drain the queue
		hub.Wait()
		stopPool()
		<-poolDone
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, conf); err != nil {
		return nil, err
	}
	return sqlx.NewDb(db, conf.Database.Engine), nil
}
