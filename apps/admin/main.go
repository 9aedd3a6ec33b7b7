package main

import (
	"log"
	"os"

	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/user"
	"github.com/laurahq/lms/storage/database"
	sqlxrepos "github.com/laurahq/lms/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig(core.Getwd())
	errAndDie(err)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	usrRepo := sqlxrepos.NewUserRepository(db)
	catalogRepo := sqlxrepos.NewCatalogRepository(db)
	progRepo := sqlxrepos.NewProgressRepository(db)
	hwRepo := sqlxrepos.NewHomeworkRepository(db)

	usrSvc := user.NewService(usrRepo)
	catalogSvc := catalog.NewService(catalogRepo)
	enrollments := progress.NewEnrollments(progRepo, catalogSvc)
	tracker := progress.NewTracker(progRepo, catalogSvc, enrollments, conf)

	// start CLI
	cli := commandLine{
		db:          db,
		usrSvc:      usrSvc,
		catalogSvc:  catalogSvc,
		enrollments: enrollments,
		tracker:     tracker,
		hwRepo:      hwRepo,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
