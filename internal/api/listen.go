package api

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Listener runs the API on a local address.
type Listener struct {
	server     *Server
	addr       string
	httpServer *http.Server
	ln         net.Listener
}

// NewListener prepares s to serve on addr, e.g. "127.0.0.1:17890".
func NewListener(s *Server, addr string) *Listener {
	return &Listener{server: s, addr: addr}
}

// Start begins listening in a goroutine. It returns when the socket is bound.
func (l *Listener) Start() error {
	l.httpServer = &http.Server{
		Addr:              l.addr,
		Handler:           l.server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	l.ln = ln
	l.server.logger.Printf("api_listening addr=%s", ln.Addr())
	go func() {
		if err := l.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			l.server.logger.Printf("api_serve_failed err=%v", err)
		}
	}()
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (l *Listener) Addr() string {
	if l.ln == nil {
		return l.addr
	}
	return l.ln.Addr().String()
}

// URL is the base URL of the API.
func (l *Listener) URL() string {
	return "http://" + l.Addr()
}

// Shutdown gracefully stops the HTTP server.
func (l *Listener) Shutdown(ctx context.Context) error {
	if l.httpServer == nil {
		return nil
	}
	l.server.audit.LogSystemShutdown("shutdown", l.server.Uptime())
	return l.httpServer.Shutdown(ctx)
}
