package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"route-dashboard/internal/domain"
	"route-dashboard/internal/logbuffer"
	"route-dashboard/internal/platform/obs"
	"route-dashboard/internal/ports"
	"route-dashboard/internal/presenter"
)

var (
	ErrRequestInFlight = errors.New("an optimization request is already in progress")
	ErrNotConfigured   = errors.New("optimization service endpoint is not configured")
	// ErrStaleResponse is returned by Submit when its response arrived after
	// the session moved on; the response was discarded.
	ErrStaleResponse = errors.New("optimization response superseded by a newer request")
)

// Session is the state behind one dashboard. It owns the progress log, the
// current result, the error banner and the push channel status.
//
// Only one optimization request may be outstanding. Every request is tagged
// with a sequence number and a response is applied only if its number is
// still the latest issued.
type Session struct {
	optimizer ports.Optimizer
	logger    *zap.Logger
	now       func() time.Time

	mu           sync.Mutex
	params       domain.OptimizationRequest
	loading      bool
	seq          uint64
	log          []domain.ProgressNotification
	result       *domain.OptimizationResult
	banner       string
	fieldErrors  map[string]string
	configErrors []string
	conn         domain.ConnectionState
	version      uint64
	subs         map[chan struct{}]struct{}
}

// NewSession builds a session. optimizer may be nil when the endpoint is not
// configured; configProblems are kept as persistent banners.
func NewSession(optimizer ports.Optimizer, configProblems []error, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		optimizer: optimizer,
		logger:    logger,
		now:       time.Now,
		params: domain.OptimizationRequest{
			NumberOfDeliveries: 20,
			NumberOfDrivers:    3,
			MinCoordinate:      domain.DefaultMinCoordinate,
			MaxCoordinate:      domain.DefaultMaxCoordinate,
		},
		conn: domain.ConnNotConnected,
		subs: make(map[chan struct{}]struct{}),
	}
	for _, p := range configProblems {
		s.configErrors = append(s.configErrors, p.Error())
	}
	return s
}

var _ ports.ProgressSink = (*Session)(nil)

// Submit validates req and runs one optimization. It blocks until the
// response arrives or ctx is done.
func (s *Session) Submit(ctx context.Context, req domain.OptimizationRequest) error {
	seq, err := s.begin(req)
	if err != nil {
		return err
	}
	return s.run(ctx, seq, req)
}

// Start is Submit without the wait. Rejections (configuration, validation,
// request in flight) are returned synchronously; the outcome of the call
// itself is delivered on the returned channel.
func (s *Session) Start(ctx context.Context, req domain.OptimizationRequest) (<-chan error, error) {
	seq, err := s.begin(req)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		done <- s.run(ctx, seq, req)
	}()
	return done, nil
}

func (s *Session) begin(req domain.OptimizationRequest) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A rejected submission must not touch the state of the running one.
	if s.loading {
		return 0, ErrRequestInFlight
	}

	s.params = req

	if s.optimizer == nil {
		s.banner = "Optimization service is not configured. Set OPTIMIZER_URL and restart."
		s.changedLocked()
		return 0, ErrNotConfigured
	}

	if err := req.Validate(); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			s.fieldErrors = ve.Fields
		}
		s.changedLocked()
		return 0, err
	}

	s.seq++
	s.loading = true
	s.log = nil
	s.result = nil
	s.banner = ""
	s.fieldErrors = nil
	s.changedLocked()
	return s.seq, nil
}

func (s *Session) run(ctx context.Context, seq uint64, req domain.OptimizationRequest) (err error) {
	if obs.RequestID(ctx) == "" {
		ctx = obs.WithRequestID(ctx, uuid.NewString())
	}
	defer obs.Time(ctx, s.logger, "session.Submit")(&err)

	res, err := s.optimizer.Optimize(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.logger.Info("discarding stale optimization response",
			zap.Uint64("seq", seq), zap.Uint64("latest", s.seq))
		return ErrStaleResponse
	}

	s.loading = false
	if err != nil {
		msg := UserMessage(err)
		s.banner = msg
		s.log = logbuffer.Append(s.log, domain.ProgressNotification{
			Message: msg,
			Style:   domain.StyleErrorLarge,
		}, s.now())
		s.changedLocked()
		return fmt.Errorf("submit: %w", err)
	}

	s.result = res
	s.changedLocked()
	return nil
}

// Reset clears the displayed state. A response still pending is discarded
// when it arrives.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.loading = false
	s.log = nil
	s.result = nil
	s.banner = ""
	s.fieldErrors = nil
	s.changedLocked()
}

// DismissError clears the error banner. Configuration errors stay.
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.banner == "" {
		return
	}
	s.banner = ""
	s.changedLocked()
}

func (s *Session) OnNotification(n domain.ProgressNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = logbuffer.Append(s.log, n, s.now())
	s.changedLocked()
}

func (s *Session) OnStateChange(st domain.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == st {
		return
	}
	s.conn = st
	s.changedLocked()
}

// Result returns the current result, or nil.
func (s *Session) Result() *domain.OptimizationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Snapshot builds the current view.
func (s *Session) Snapshot() presenter.View {
	s.mu.Lock()
	st := presenter.State{
		Version:      s.version,
		Params:       s.params,
		Loading:      s.loading,
		Connection:   s.conn,
		ConfigErrors: append([]string(nil), s.configErrors...),
		Error:        s.banner,
		FieldErrors:  s.fieldErrors,
		Log:          append([]domain.ProgressNotification(nil), s.log...),
		Result:       s.result,
	}
	s.mu.Unlock()

	return presenter.Build(st)
}

// Subscribe returns a channel that receives a signal after every state
// change, and a func to stop the subscription. Signals coalesce; receivers
// should read a fresh Snapshot on each one.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
		})
	}
}

func (s *Session) changedLocked() {
	s.version++
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
