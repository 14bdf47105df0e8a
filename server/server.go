// Package server exposes configured composition routes over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fcx/compose"
	"fcx/config"
	"fcx/evaluate"
	"fcx/fetch"
)

// Server serves composed pages for every route in the configuration.
type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	fetcher compose.Fetcher
	eval    compose.Evaluator
	mux     *http.ServeMux
	srv     *http.Server
}

// New builds a server over loaded configuration. When rpt is not nil every
// composed page is also stored in the debug report.
func New(cfg *config.Config, rpt *config.Report, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var fetcher compose.Fetcher = fetch.NewComposite(cfg.Server.TemplateRoot, nil, log)
	if rpt != nil {
		fetcher = newReportingFetcher(fetcher, rpt)
	}

	s := &Server{
		cfg:     cfg,
		log:     log,
		fetcher: fetcher,
		eval:    evaluate.New(),
		mux:     http.NewServeMux(),
	}

	for i := range cfg.Routes {
		rc := &cfg.Routes[i]
		route, err := BuildRoute(rc, &logHooks{log: log})
		if err != nil {
			return nil, err
		}
		pattern, params := mountPattern(rc)
		s.mux.HandleFunc("GET "+pattern, s.handler(route, params, rpt))
		log.Info("Route mounted", zap.String("route", rc.Name), zap.String("pattern", pattern),
			zap.Strings("fragments", rc.FragmentNames()))
	}

	s.srv = &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      s.mux,
		ReadTimeout:  cfg.Server.ReadTimeout.Value(),
		WriteTimeout: cfg.Server.WriteTimeout.Value(),
	}
	return s, nil
}

// Handler returns the root handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe runs the server until ctx is canceled, then shuts it down
// draining in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", s.srv.Addr, err)
	}
	s.log.Info("Serving", zap.String("address", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

// handler composes the route's page for each request. Fatal composition
// errors become 502 - the page could not be assembled from its parts.
func (s *Server) handler(route *compose.Route, params []string, rpt *config.Report) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		log := s.log.With(zap.String("route", route.Name), zap.String("request", reqID))

		rctx := make(compose.RenderContext)
		for k, vs := range r.URL.Query() {
			if len(vs) > 0 {
				rctx[k] = vs[0]
			}
		}
		for _, p := range params {
			rctx[p] = r.PathValue(p)
		}

		body, err := compose.Render(r.Context(), route, s.fetcher, s.eval, rctx, log)
		if err != nil {
			log.Error("Composition failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}

		rpt.StoreData("page-"+route.Name, body.Content())

		w.Header().Set("Content-Type", body.ContentType())
		w.Header().Set("X-Request-Id", reqID)
		if _, err := w.Write(body.Content()); err != nil {
			log.Warn("Response write failed", zap.Error(err))
		}
		log.Debug("Composition served",
			zap.Int("size", len(body.Content())),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// logHooks report composition lifecycle to the server log.
type logHooks struct {
	log *zap.Logger
}

func (h *logHooks) RenderStarted(_ context.Context, route string) {
	h.log.Debug("Composition started", zap.String("route", route))
}

func (h *logHooks) RenderFinished(_ context.Context, route string, err error) {
	if err != nil {
		h.log.Debug("Composition finished with error", zap.String("route", route), zap.Error(err))
		return
	}
	h.log.Debug("Composition finished", zap.String("route", route))
}
