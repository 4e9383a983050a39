package utils

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serverReadTimeout  = 60 * time.Second
	serverWriteTimeout = 60 * time.Second
	shutdownTimeout    = 30 * time.Second

	gracefulEnvKey = "ATELIER_GRACEFUL"
	gracefulEnv    = gracefulEnvKey + "=1"
	// fd 3 is the first slot after stdin/stdout/stderr in the child's file table
	gracefulListenerFD = 3
)

// gracefulServer wraps http.Server with zero-downtime restart: SIGTERM drains
// and exits, SIGUSR2 forks a replacement that inherits the listener.
type gracefulServer struct {
	*http.Server

	listener     net.Listener
	inherited    bool
	signalChan   chan os.Signal
	shutdownChan chan struct{}
}

func newGracefulServer(addr string, handler http.Handler) *gracefulServer {
	return &gracefulServer{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  serverReadTimeout,
			WriteTimeout: serverWriteTimeout,
		},
		inherited:    os.Getenv(gracefulEnvKey) != "",
		signalChan:   make(chan os.Signal, 1),
		shutdownChan: make(chan struct{}),
	}
}

func (srv *gracefulServer) listenAndServe() error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := srv.netListener(addr)
	if err != nil {
		return err
	}
	srv.listener = ln
	return srv.serve()
}

func (srv *gracefulServer) listenAndServeTLS(certFile, keyFile string) error {
	addr := srv.Addr
	if addr == "" {
		addr = ":https"
	}

	cfg := &tls.Config{}
	if srv.TLSConfig != nil {
		cfg = srv.TLSConfig.Clone()
	}
	if cfg.NextProtos == nil {
		cfg.NextProtos = []string{"http/1.1"}
	}
	var err error
	cfg.Certificates = make([]tls.Certificate, 1)
	cfg.Certificates[0], err = tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return err
	}

	ln, err := srv.netListener(addr)
	if err != nil {
		return err
	}
	srv.listener = tls.NewListener(ln, cfg)
	return srv.serve()
}

func (srv *gracefulServer) serve() error {
	go srv.handleSignals()
	err := srv.Server.Serve(srv.listener)
	// Serve returns as soon as the listener closes; hold until Shutdown drains
	<-srv.shutdownChan
	return err
}

func (srv *gracefulServer) netListener(addr string) (net.Listener, error) {
	if srv.inherited {
		file := os.NewFile(gracefulListenerFD, "")
		ln, err := net.FileListener(file)
		if err != nil {
			return nil, fmt.Errorf("inherit listener: %w", err)
		}
		return ln, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

func (srv *gracefulServer) handleSignals() {
	signal.Notify(
		srv.signalChan,
		syscall.SIGTERM,
		syscall.SIGUSR2,
	)

	for sig := range srv.signalChan {
		switch sig {
		case syscall.SIGTERM:
			Sugar.Info("SIGTERM received, draining HTTP server")
			srv.drain()
		case syscall.SIGUSR2:
			Sugar.Info("SIGUSR2 received, forking replacement server")
			pid, err := srv.forkReplacement()
			if err != nil {
				Sugar.Errorf("fork replacement failed, keeping current server: %v", err)
				continue
			}
			Sugar.Infof("replacement server started pid=%d, draining old server", pid)
			srv.drain()
		}
	}
}

func (srv *gracefulServer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		Sugar.Errorf("HTTP server shutdown: %v", err)
	} else {
		Sugar.Info("HTTP server shutdown complete")
	}
	close(srv.shutdownChan)
}

// forkReplacement re-execs the current binary with the listener fd passed
// down, flagged through the environment so the child inherits instead of
// binding.
func (srv *gracefulServer) forkReplacement() (int, error) {
	tcpLn, ok := srv.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener is not *net.TCPListener")
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("listener file: %w", err)
	}

	envs := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != gracefulEnv {
			envs = append(envs, e)
		}
	}
	envs = append(envs, gracefulEnv)

	attr := &syscall.ProcAttr{
		Env:   envs,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	}
	pid, err := syscall.ForkExec(os.Args[0], os.Args, attr)
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}

// GraceServer serves HTTP on addr with graceful shutdown and restart.
func GraceServer(addr string, handler http.Handler) error {
	return newGracefulServer(addr, handler).listenAndServe()
}

// GraceServerTLS serves HTTPS on addr with graceful shutdown and restart.
func GraceServerTLS(addr, certFile, keyFile string, handler http.Handler) error {
	return newGracefulServer(addr, handler).listenAndServeTLS(certFile, keyFile)
}
