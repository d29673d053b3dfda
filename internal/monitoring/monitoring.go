// Package monitoring serves the Prometheus metrics of a mirroring session.
package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

// Config of the monitoring server.
type Config struct {
	// Listen is the address to listen on, e.g. "127.0.0.1:9090".
	Listen string
	// URLPrefix is prepended to every path.
	URLPrefix string
	// Profiling exposes the pprof handlers under /debug/pprof.
	Profiling bool
}

type Monitoring struct {
	conf    Config
	handler http.Handler
	logger  *slog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a monitoring server exposing the metrics of gatherer.
func New(conf Config, gatherer prometheus.Gatherer) *Monitoring {
	m := &Monitoring{conf: conf, logger: util.GetLogger()}

	h := http.NewServeMux()
	if conf.Profiling {
		prefix := conf.URLPrefix + "/debug/pprof"
		h.HandleFunc(prefix+"/", pprof.Index)
		h.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
		h.HandleFunc(prefix+"/profile", pprof.Profile)
		h.HandleFunc(prefix+"/symbol", pprof.Symbol)
		h.HandleFunc(prefix+"/trace", pprof.Trace)
		// named profiles are not routed by pprof.Index under a custom prefix
		for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			h.Handle(prefix+"/"+name, pprof.Handler(name))
		}
	}
	h.Handle(conf.URLPrefix+"/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	m.handler = h

	return m
}

// Handler returns the HTTP handler of the server.
func (m *Monitoring) Handler() http.Handler {
	return m.handler
}

// Start listens on the configured address and serves in the background.
func (m *Monitoring) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.server != nil {
		return errors.New("monitoring server already started")
	}

	listener, err := net.Listen("tcp", m.conf.Listen)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", m.conf.Listen)
	}
	m.listener = listener
	m.server = &http.Server{Handler: m.handler}

	m.logger.Info("Prometheus metrics enabled", "address", "http://"+listener.Addr().String()+m.conf.URLPrefix+"/metrics")
	go func() {
		if err := m.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("Monitoring server failed", "error", err)
		}
	}()
	return nil
}

// Addr returns the address the server listens on, once started.
func (m *Monitoring) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Shutdown stops the server gracefully.
func (m *Monitoring) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	server := m.server
	m.mu.Unlock()
	if server == nil {
		return nil
	}
	m.logger.Debug("Shutting down monitoring server")
	return server.Shutdown(ctx)
}

func (m *Monitoring) String() string {
	return fmt.Sprintf("monitoring::%s%s", m.conf.Listen, m.conf.URLPrefix)
}
