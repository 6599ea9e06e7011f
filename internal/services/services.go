package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/cache"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/SAP-F-2025/quiz-engine/internal/scoring"
	"github.com/SAP-F-2025/quiz-engine/internal/validator"
)

const defaultResultTTL = 10 * time.Minute

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	Repo      repositories.Repository
	Cache     cache.CacheService // nil disables caching
	Events    QuizEventService // nil drops events
	Engine    *scoring.Engine
	Validator *validator.Validator
	Logger    *slog.Logger

	ResultTTL time.Duration
	Recorder  SessionRecorder  // optional
	Clock     func() time.Time // defaults to time.Now
}

type Services struct {
	Session  SessionService
	Response ResponseService
	Export   ExportService
}

func NewServices(deps Dependencies) *Services {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.ResultTTL <= 0 {
		deps.ResultTTL = defaultResultTTL
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Events == nil {
		deps.Events = NewQuizEventService(nil, deps.Logger)
	}
	if deps.Engine == nil {
		deps.Engine = scoring.NewEngine(deps.Logger)
	}

	store := newQuizStore(deps.Repo, deps.Cache, deps.ResultTTL, deps.Logger)
	responses := newResponseService(deps.Repo, store, deps.Engine, deps.Events, deps.Validator,
		deps.Logger.With("service", "response"), deps.Clock)

	return &Services{
		Session: withOperationLogging(&sessionService{
			repo:      deps.Repo,
			store:     store,
			responses: responses,
			engine:    deps.Engine,
			events:    deps.Events,
			validator: deps.Validator,
			recorder:  deps.Recorder,
			resultTTL: deps.ResultTTL,
			logger:    deps.Logger.With("service", "session"),
			now:       deps.Clock,
		}, NewServiceLogger(deps.Logger, "session")),
		Response: responses,
		Export: &exportService{
			repo:   deps.Repo,
			store:  store,
			logger: deps.Logger.With("service", "export"),
		},
	}
}
