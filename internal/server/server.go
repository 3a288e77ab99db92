package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/gorilla/mux"
)

// ServerOptions configures the HTTP server. Zero values get defaults.
type ServerOptions struct {
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	Logger            log.Logger
}

// Server hosts an http.Handler on a listener opened by the caller.
type Server struct {
	http   *http.Server
	logger log.Logger
	opts   ServerOptions
}

// NewHandler builds the full endpoint handler: routing plus the middleware
// chain. Nil AccessLog, Metrics and Logger fields of api are filled with
// no-op values.
func NewHandler(api *API) http.Handler {
	if api.Store == nil {
		panic("server.NewHandler: store is nil")
	}
	if api.AccessLog == nil {
		api.AccessLog = nopAccessLog{}
	}
	if api.Metrics == nil {
		api.Metrics = NewMetrics(nil)
	}
	if api.Logger == nil {
		api.Logger = log.NewNopLogger()
	}
	api.Metrics.setEndpointsLoaded(api.Store.Len())

	// SkipClean keeps "//" and ".." segments so the path reaches the
	// lookup exactly as requested.
	r := mux.NewRouter().SkipClean(true)
	r.Methods(http.MethodGet, http.MethodHead).
		Path("/{" + endpointVar + ":.*}").
		HandlerFunc(api.ServeEndpoint)
	r.MethodNotAllowedHandler = http.HandlerFunc(api.MethodNotAllowed)

	var h http.Handler = r
	h = withCORS(h)
	h = withDefaultHeaders(h)
	h = withRequestLogging(h, api.Logger)
	return api.Metrics.instrument(h)
}

func NewServer(handler http.Handler, opts ServerOptions) *Server {
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 5 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}

	return &Server{
		logger: opts.Logger,
		opts:   opts,
		http: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			IdleTimeout:       opts.IdleTimeout,
		},
	}
}

// Serve blocks serving on ln until Shutdown is called. A clean shutdown
// returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Log("transport", "http", "address", ln.Addr().String(), "msg", "listening")
	if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting up to ShutdownTimeout for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
