package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/alaraguvercin/kolay-hatirla/docs"
	"github.com/alaraguvercin/kolay-hatirla/internal/adapters/auth/identitykit"
	mem "github.com/alaraguvercin/kolay-hatirla/internal/adapters/storage/memory"
	pg "github.com/alaraguvercin/kolay-hatirla/internal/adapters/storage/postgres"
	"github.com/alaraguvercin/kolay-hatirla/internal/domain/accounts"
	"github.com/alaraguvercin/kolay-hatirla/internal/domain/dashboard"
	"github.com/alaraguvercin/kolay-hatirla/internal/domain/doses"
	"github.com/alaraguvercin/kolay-hatirla/internal/domain/medications"
	"github.com/alaraguvercin/kolay-hatirla/internal/middleware"
	"github.com/alaraguvercin/kolay-hatirla/internal/platform/logger"
	"github.com/alaraguvercin/kolay-hatirla/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // nil => dev mode (X-Debug-User-ID)
	Provider     auth.Provider     // nil => auth endpoints answer 503

	// DB set => Postgres repos; nil => in-memory.
	DB *sql.DB

	Log logger.Logger

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Now overrides the dashboard clock (tests).
	Now func() time.Time
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.New(logger.Options{App: "kolay-hatirla"})
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: opts.CORSAllowCredentials,
			MaxAge:           300,
		}))
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		medsRepo  medications.Repository
		dosesRepo doses.Repository
	)

	if opts.DB != nil {
		medsRepo = pg.NewMedicationsRepo(opts.DB)
		dosesRepo = pg.NewDosesRepo(opts.DB)
	} else {
		medsRepo = mem.NewMedicationsRepo()
		dosesRepo = mem.NewDosesRepo()
	}

	dosesSvc := doses.NewService(dosesRepo)
	medsSvc := medications.NewService(medsRepo, dosesSvc)

	accounts.RegisterRoutes(r, accounts.Deps{
		Provider: opts.Provider,
		Log:      log,
		Localize: identitykit.LocalizedMessage,
	})
	medications.RegisterRoutes(r, medsSvc, log)
	doses.RegisterRoutes(r, dosesSvc, log)
	dashboard.RegisterRoutes(r, dashboard.Deps{
		Medications: medsSvc,
		Doses:       dosesSvc,
		Log:         log,
		Now:         opts.Now,
	})

	return r
}
