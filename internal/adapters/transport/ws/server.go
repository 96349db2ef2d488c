package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bnema/neuroledger/internal/application"
	"github.com/bnema/neuroledger/internal/domain"
	"github.com/bnema/neuroledger/internal/ports"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 10 * time.Second
	closeGracePeriod       = time.Second
	maxFrameBytes          = 64 << 10
)

var ErrRateLimited = errors.New("rate limit exceeded")

type Options struct {
	// RateLimit is commands per second per connection; zero disables limiting.
	RateLimit       float64
	Burst           int
	MetricsPath     string
	MetricsHandler  http.Handler
	ShutdownTimeout time.Duration
}

// Server exposes a Dispatcher over websocket. Dispatcher calls from all
// connections are serialized by one mutex.
type Server struct {
	dispatcher *application.Dispatcher
	dispatchMu sync.Mutex

	metrics  ports.Metrics
	logger   zerolog.Logger
	opts     Options
	upgrader websocket.Upgrader

	connsMu sync.Mutex
	conns   map[*websocket.Conn]struct{}
}

func NewServer(dispatcher *application.Dispatcher, metrics ports.Metrics, logger zerolog.Logger, opts Options) *Server {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	return &Server{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger.With().Str("adapter", "ws").Logger(),
		opts:       opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		conns: map[*websocket.Conn]struct{}{},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.opts.MetricsHandler != nil && s.opts.MetricsPath != "" {
		mux.Handle(s.opts.MetricsPath, s.opts.MetricsHandler)
	}
	return mux
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Msg("command server listening")
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("command server shutting down")
	shutdownErr := httpServer.Shutdown(shutdownCtx)
	s.closeConnections()
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(shutdownErr, fmt.Errorf("serve: %w", err))
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	return nil
}

// Dispatch runs one command against the shared dispatcher and records
// metrics for it.
func (s *Server) Dispatch(cmd domain.Command) (domain.CommandResult, error) {
	s.dispatchMu.Lock()
	result, err := s.dispatcher.Handle(cmd)
	contextSize := uint64(0)
	if err == nil && cmd.Kind.Name == domain.KindContextExpand {
		contextSize = s.dispatcher.State().ContextSize
	}
	s.dispatchMu.Unlock()

	s.metrics.ObserveCommand(cmd.Kind.Name, domain.ErrorKind(err))
	if contextSize != 0 {
		s.metrics.SetContextSize(contextSize)
	}
	return result, err
}

// State returns a copy of the backend state.
func (s *Server) State() domain.BackendState {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	return s.dispatcher.State()
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	s.track(conn)
	defer s.untrack(conn)

	logger := s.logger.With().Str("remote", r.RemoteAddr).Logger()
	logger.Debug().Msg("connection opened")
	defer logger.Debug().Msg("connection closed")

	limiter := s.newLimiter()
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("connection read failed")
			}
			return
		}

		enc := EncodingJSON
		if messageType == websocket.BinaryMessage {
			enc = EncodingCBOR
		}

		reply := s.handleFrame(logger, limiter, data, enc)
		payload, err := EncodeReply(reply, enc)
		if err != nil {
			logger.Error().Err(err).Msg("encode reply")
			return
		}
		if err := conn.WriteMessage(messageType, payload); err != nil {
			logger.Warn().Err(err).Msg("connection write failed")
			return
		}
	}
}

func (s *Server) handleFrame(logger zerolog.Logger, limiter *rate.Limiter, data []byte, enc Encoding) Reply {
	// Every frame spends a token, including ones that fail to decode.
	allowed := limiter == nil || limiter.Allow()

	cmd, err := DecodeCommand(data, enc)
	if !allowed {
		s.metrics.ObserveCommand(cmd.Kind.Name, "rate_limited")
		logger.Warn().Str("command_id", cmd.ID.String()).Msg("command rate limited")
		return Reply{CommandID: cmd.ID, Message: ErrRateLimited.Error(), Error: "rate_limited"}
	}
	if err != nil {
		logger.Debug().Err(err).Str("encoding", enc.String()).Msg("command rejected")
		return ReplyFromError(cmd.ID, err)
	}

	result, err := s.Dispatch(cmd)
	if err != nil {
		logger.Debug().
			Err(err).
			Str("command_id", cmd.ID.String()).
			Str("kind", string(cmd.Kind.Name)).
			Str("role", cmd.Role.String()).
			Msg("dispatch failed")
		return ReplyFromError(cmd.ID, err)
	}
	return ReplyFromResult(result)
}

func (s *Server) newLimiter() *rate.Limiter {
	if s.opts.RateLimit <= 0 {
		return nil
	}
	burst := s.opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(s.opts.RateLimit), burst)
}

func (s *Server) track(conn *websocket.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
	_ = conn.Close()
}

// closeConnections sends a going-away close frame to every hijacked
// connection; http.Server.Shutdown does not see them.
func (s *Server) closeConnections() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	deadline := time.Now().Add(closeGracePeriod)
	message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range s.conns {
		_ = conn.WriteControl(websocket.CloseMessage, message, deadline)
		_ = conn.Close()
	}
}
