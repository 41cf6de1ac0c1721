package chat

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type Options struct {
	Addr string
	// MaxSessions caps concurrently served connections; <= 0 means no cap.
	MaxSessions int
	Session     SessionOptions
}

type Server struct {
	opts   Options
	logger *zap.Logger
	reg    *Registry
	pool   *ants.Pool

	mu       sync.Mutex
	listener net.Listener
	closed   atomic.Bool
}

func NewServer(opts Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(opts.MaxSessions,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(v any) {
			logger.Error("session panicked", zap.Any("panic", v), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create session pool")
	}
	return &Server{
		opts:   opts,
		logger: logger,
		reg:    NewRegistry(logger.Named("registry")),
		pool:   pool,
	}, nil
}

func (s *Server) Registry() *Registry {
	return s.reg
}

// Addr returns the listening address once Serve has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.opts.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or Stop is called,
// which both end it with a nil error.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.closed.Load() {
		_ = ln.Close()
		return ErrServerClosed
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.logger.Info("server started", zap.String("addr", ln.Addr().String()))
	return s.acceptLoop(ctx, ln)
}

// Stop closes the listener, terminates every session and waits for the
// session workers to finish.
func (s *Server) Stop() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.logger.Info("shutting down")

	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Unlock()

	for _, sess := range s.reg.List() {
		sess.terminate()
	}
	if err := s.pool.ReleaseTimeout(5 * time.Second); err != nil {
		s.logger.Warn("session workers did not exit in time", zap.Error(err))
	}

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 5 * time.Millisecond
	retry.MaxInterval = time.Second
	retry.MaxElapsedTime = 0

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closed.Load() || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				delay := retry.NextBackOff()
				s.logger.Warn("accept failed, retrying", zap.Error(err), zap.Duration("delay", delay))
				select {
				case <-time.After(delay):
					continue
				case <-ctx.Done():
					return nil
				}
			}
			return errors.Wrap(err, "accept")
		}
		retry.Reset()
		s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	sess := NewSession(conn, s.reg, s.opts.Session, s.logger.Named("session"))
	s.logger.Debug("connection accepted", zap.String("addr", sess.remote))

	// Registered before the read loop starts so peers can resolve it as
	// soon as it claims an identity.
	s.reg.Add(sess)
	if err := s.pool.Submit(sess.Run); err != nil {
		s.reg.Remove(sess)
		RejectedConnections.Inc()
		s.logger.Warn("connection rejected", zap.String("addr", sess.remote), zap.Error(err))
		sess.reject(serverFullText)
	}
}
