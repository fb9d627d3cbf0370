package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/learning-designer/pkg/config"
	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/nikogura/learning-designer/pkg/logging"
	"github.com/nikogura/learning-designer/pkg/session"
	"github.com/pkg/errors"
)

const (
	// CookieName holds the session ID.
	CookieName = "ld_session"

	shutdownTimeout = 10 * time.Second
	sweepInterval   = 10 * time.Minute
)

// TextReader turns an uploaded file into plain text.
type TextReader interface {
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
}

// NarrativeFetcher downloads a project narrative from a URL.
type NarrativeFetcher func(ctx context.Context, input string) (string, error)

// DocumentRenderer converts finalized Markdown for display and download.
type DocumentRenderer interface {
	ToHTML(ctx context.Context, markdown string) (string, error)
	DOCX(ctx context.Context, markdown string) ([]byte, error)
}

// Sweeper is implemented by stores that need expired sessions purged periodically.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Config    config.Config
	Store     session.Store
	Extractor curriculum.Extractor
	Generator curriculum.Generator
	Text      TextReader
	Fetch     NarrativeFetcher
	Documents DocumentRenderer
	Logger    *logging.Logger
}

// Server is the HTTP front end of the curriculum builder.
type Server struct {
	cfg       config.Config
	store     session.Store
	extractor curriculum.Extractor
	builder   *curriculum.Builder
	text      TextReader
	fetch     NarrativeFetcher
	documents DocumentRenderer
	logger    *logging.Logger
	now       func() time.Time
}

// New creates a server. Store, Extractor and Generator are required.
func New(deps Deps) (s *Server, err error) {
	if deps.Store == nil || deps.Extractor == nil || deps.Generator == nil {
		err = errors.New("server requires a session store, an extractor and a generator")
		return s, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	cfg := deps.Config
	cfg.ApplyDefaults()

	s = &Server{
		cfg:       cfg,
		store:     deps.Store,
		extractor: deps.Extractor,
		builder:   curriculum.NewBuilder(deps.Generator),
		text:      deps.Text,
		fetch:     deps.Fetch,
		documents: deps.Documents,
		logger:    logger,
		now:       time.Now,
	}
	return s, err
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() (r *gin.Engine) {
	r = gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(corsMiddleware(s.cfg.Server.CORSOrigins))
	r.MaxMultipartMemory = s.cfg.Server.MaxUploadBytes

	r.GET("/healthcheck", s.healthCheck)

	api := r.Group("/api")
	{
		api.POST("/intake", s.intake)
		api.GET("/session", s.getSession)
		api.POST("/confirm", s.confirm)

		build := api.Group("/build")
		build.POST("/objectives", s.generateObjectives)
		build.POST("/outline", s.generateOutline)
		build.POST("/weeks/:week", s.generateWeek)
		build.POST("/weeks/:week/regenerate", s.regenerateWeek)
		build.PUT("/steps/:stage", s.saveStep)
		build.POST("/finalize", s.finalize)

		api.GET("/download", s.download)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) (err error) {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if sweeper, ok := s.store.(Sweeper); ok {
		go s.sweep(ctx, sweeper)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
			return err
		}
		err = errors.Wrap(err, "server failed")
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		err = errors.Wrap(err, "graceful shutdown failed")
		return err
	}

	return err
}

func (s *Server) sweep(ctx context.Context, sweeper Sweeper) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sweeper.Sweep(ctx)
			if err != nil {
				s.logger.Warn("session sweep failed", "error", err.Error())
				continue
			}
			if removed > 0 {
				s.logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
