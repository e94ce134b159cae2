package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	echoapi "github.com/lccc/gatelog/apps/api/echo"
	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/activity"
	"github.com/lccc/gatelog/core/kiosk"
	"github.com/lccc/gatelog/core/notice"
	"github.com/lccc/gatelog/core/student"
	"github.com/lccc/gatelog/core/violation"
	emailsvc "github.com/lccc/gatelog/services/email"
	logsvc "github.com/lccc/gatelog/services/logger"
	"github.com/lccc/gatelog/storage/blob/gcs"
	"github.com/lccc/gatelog/storage/blob/inmem"
	"github.com/lccc/gatelog/storage/database"
	"github.com/lccc/gatelog/storage/database/firestore"
	"github.com/lccc/gatelog/storage/database/inmem"
	"github.com/lccc/gatelog/storage/database/sqlx"
	"github.com/lccc/gatelog/storage/firebase"
)

const (
	driverMemory    = "memory"
	driverPostgres  = "postgres"
	driverFirestore = "firestore"
	driverFirebase  = "firebase"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Closers release the storage clients on shutdown, in order.
	Closers []func() error

	storesOut struct {
		dig.Out
		Repo    student.Repository
		Blobs   core.BlobStore
		Closers Closers
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func setUpDB(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(ctx, db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// newStores opens the student document store and the blob store selected by conf.
// The firebase app is only initialised when one of them needs it.
func newStores(conf *core.Config, loggerParam DBLoggerParam) storesOut {
	ctx := context.Background()
	logger := loggerParam.Logger
	out := storesOut{}

	var app *firebase.App
	firebaseApp := func() *firebase.App {
		if app == nil {
			var err error
			if app, err = firebaseapp.New(ctx, conf); err != nil {
				logger.Fatal(fmt.Sprintf("setting up firebase: %v", err), err)
			}
		}
		return app
	}

	switch conf.Database.Driver {
	case driverMemory:
		out.Repo = inmemdb.NewStudentRepository(inmemdb.Open())
	case driverPostgres:
		db, err := setUpDB(ctx, conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		out.Closers = append(out.Closers, db.Close)
		out.Repo = sqlxrepos.NewStudentRepository(db)
	case driverFirestore:
		client, err := firestoredb.Open(ctx, firebaseApp())
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up firestore: %v", err), err)
		}
		out.Closers = append(out.Closers, client.Close)
		out.Repo = firestoredb.NewStudentRepository(client)
	default:
		logger.Fatal("unknown database driver: " + conf.Database.Driver)
	}

	switch conf.Blob.Driver {
	case driverMemory:
		out.Blobs = inmemblob.New()
	case driverFirebase:
		store, err := gcsblob.New(ctx, firebaseApp())
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up blob store: %v", err), err)
		}
		out.Blobs = store
	default:
		logger.Fatal("unknown blob driver: " + conf.Blob.Driver)
	}
	return out
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newWindowStore(conf *core.Config, logger core.Logger) *activity.WindowStore {
	windows, err := activity.NewWindowStore(activity.Window{
		StartTime: conf.LateWindow.StartTime,
		LateTime:  conf.LateWindow.LateTime,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("invalid late window: %v", err), err)
	}
	return windows
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

type serverParams struct {
	dig.In

	Conf         *core.Config
	Logger       core.Logger
	Validate     *validator.Validate
	Translator   ut.Translator
	Registry     *prometheus.Registry
	ActivitySvc  *activity.Service
	StudentSvc   *student.Service
	ViolationSvc *violation.Service
	NoticeSvc    *notice.Service
	KioskSvc     *kiosk.Service
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Validate:     p.Validate,
		Translator:   p.Translator,
		Registry:     p.Registry,
		ActivitySvc:  p.ActivitySvc,
		StudentSvc:   p.StudentSvc,
		ViolationSvc: p.ViolationSvc,
		NoticeSvc:    p.NoticeSvc,
		KioskSvc:     p.KioskSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStores))
	must(c.Provide(newEmailService))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(prometheus.NewRegistry))
	must(c.Provide(newWindowStore))
	must(c.Provide(activity.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(violation.NewService))
	must(c.Provide(notice.NewService))
	must(c.Provide(kiosk.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}

// Close runs every closer, returning the first error.
func (cs Closers) Close() error {
	var first error
	for _, closeFn := range cs {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
