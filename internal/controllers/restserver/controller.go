package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/analemma/internal/log"
	"github.com/chrissnell/analemma/pkg/config"
	"github.com/chrissnell/analemma/pkg/eot"
	"github.com/chrissnell/analemma/pkg/subpoint"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Services are the engine objects the handlers read from
type Services struct {
	Backend     string
	Resolver    *subpoint.Resolver
	Series      *eot.SeriesCache
	Declination *eot.DeclinationCache
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.ServerData
	Server     http.Server
	services   Services
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.ServerData, services Services, logger *zap.SugaredLogger) (*Controller, error) {
	if services.Resolver == nil || services.Series == nil || services.Declination == nil {
		return nil, fmt.Errorf("REST server requires a resolver, a series cache and a declination cache")
	}

	ctrl := &Controller{
		ctx:      ctx,
		wg:       wg,
		services: services,
		logger:   logger,
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("server.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if rc.HTTPPort == 0 {
		logger.Infof("server.http_port not provided; defaulting to %d", config.DefaultHTTPPort)
		rc.HTTPPort = config.DefaultHTTPPort
	}

	ctrl.restConfig = rc
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = rc.Address()
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the router, for embedding or testing without a listener
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(c.requestMiddleware)

	router.HandleFunc("/subpoints", c.handlers.GetSubpoints).Methods(http.MethodGet)
	router.HandleFunc("/subpoint/{body}", c.handlers.GetSubpoint).Methods(http.MethodGet)
	router.HandleFunc("/declination/{year:-?[0-9]+}", c.handlers.GetDeclination).Methods(http.MethodGet)
	router.HandleFunc("/series/{year:-?[0-9]+}", c.handlers.GetSeries).Methods(http.MethodGet)
	router.HandleFunc("/analemma/{year:-?[0-9]+}", c.handlers.GetAnalemma).Methods(http.MethodGet)
	router.HandleFunc("/orbit", c.handlers.GetOrbit).Methods(http.MethodGet)
	router.HandleFunc("/daylight", c.handlers.GetDaylight).Methods(http.MethodGet)
	router.HandleFunc("/status", c.handlers.GetStatus).Methods(http.MethodGet)
	router.HandleFunc("/requests", c.handlers.GetRequests).Methods(http.MethodGet)

	return router
}

// statusRecorder captures what a handler wrote for the access log
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// requestMiddleware tags each request with an X-Request-ID and writes an
// access log entry once the handler returns.
func (c *Controller) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w}
		started := time.Now()

		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(rec, r.WithContext(ctx))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		log.LogHTTPRequest(log.HTTPLogEntry{
			Timestamp:  started,
			RequestID:  id,
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     rec.status,
			Duration:   time.Since(started),
			Size:       rec.size,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}
