package main

import (
	"log"
	"os"

	echoapi "github.com/laurahq/lms/apps/api/echo"
	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/user"
	"github.com/laurahq/lms/core/views"
	emailsvc "github.com/laurahq/lms/services/email"
	logsvc "github.com/laurahq/lms/services/logger"
	"github.com/laurahq/lms/storage/database"
	inmemdb "github.com/laurahq/lms/storage/database/inmem"
	sqlxrepos "github.com/laurahq/lms/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig(core.Getwd())
	if err != nil {
		std.Fatalf("%+v", err)
	}

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!(conf.Debug || conf.TestMode))

	// set up repositories: Postgres when a DB host is configured, in-memory otherwise
	var (
		usrRepo     user.Repository
		catalogRepo catalog.Repository
		progRepo    progress.Repository
		hwRepo      homework.Repository
	)
	if conf.Database.Host != "" {
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal("opening database", err)
		}
		defer func() { _ = db.Close() }()

		usrRepo = sqlxrepos.NewUserRepository(db)
		catalogRepo = sqlxrepos.NewCatalogRepository(db)
		progRepo = sqlxrepos.NewProgressRepository(db)
		hwRepo = sqlxrepos.NewHomeworkRepository(db)
	} else {
		mem, err := inmemdb.Open()
		if err != nil {
			logger.Fatal("opening in-memory store", err)
		}
		usrRepo = inmemdb.NewUserRepository(mem)
		catalogRepo = inmemdb.NewCatalogRepository(mem)
		progRepo = inmemdb.NewProgressRepository(mem)
		hwRepo = inmemdb.NewHomeworkRepository(mem)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(usrRepo)
	catalogSvc := catalog.NewService(catalogRepo)
	enrollments := progress.NewEnrollments(progRepo, catalogSvc)
	tracker := progress.NewTracker(progRepo, catalogSvc, enrollments, conf)
	hwSvc := homework.NewService(hwRepo, catalogSvc, usrSvc, mailSvc)
	viewsSvc := views.NewService(usrSvc, catalogSvc, tracker, enrollments, hwSvc)

	validate, translator := core.NewValidators()

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		CatalogSvc:  catalogSvc,
		Enrollments: enrollments,
		Tracker:     tracker,
		HomeworkSvc: hwSvc,
		ViewsSvc:    viewsSvc,
		Validate:    validate,
		Translator:  translator,
	})
	app.Start()
}
