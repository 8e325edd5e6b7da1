package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/vitalpoint-assistant/internal/llm"
	"github.com/hackgods/vitalpoint-assistant/internal/metrics"
	"github.com/hackgods/vitalpoint-assistant/internal/notify"
	"github.com/hackgods/vitalpoint-assistant/internal/session"
	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

const DefaultFallbackTimeout = 20 * time.Second

// Notifier delivers booking confirmations.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, c notify.Confirmation) error
}

// Reply is what a turn sends back to the patient.
type Reply struct {
	Text          string
	Intent        Intent
	Step          session.Step
	AppointmentID int64
}

type Service struct {
	engine          *Engine
	store           session.Store
	locker          session.Locker
	completer       llm.Completer
	notifier        Notifier
	metrics         *metrics.AssistantMetrics
	logger          *logging.Logger
	fallbackTimeout time.Duration
	now             func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m *metrics.AssistantMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithFallbackTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fallbackTimeout = d
		}
	}
}

func NewService(engine *Engine, store session.Store, locker session.Locker, completer llm.Completer, opts ...Option) *Service {
	s := &Service{
		engine:          engine,
		store:           store,
		locker:          locker,
		completer:       completer,
		logger:          logging.Default(),
		fallbackTimeout: DefaultFallbackTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.completer == nil {
		s.completer = llm.CannedCompleter{}
	}
	return s
}

// ProcessTurn runs one utterance for a session. State changes happen under the session lock; the
// completer call and the confirmation email happen after it is released. Only ErrInvalidInput and
// infrastructure failures are returned; every other failure is answered with a reply.
func (s *Service) ProcessTurn(ctx context.Context, sessionID, utterance string) (Reply, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Reply{}, fmt.Errorf("%w: missing session id", ErrInvalidInput)
	}
	if strings.TrimSpace(utterance) == "" {
		return Reply{}, fmt.Errorf("%w: empty utterance", ErrInvalidInput)
	}

	start := s.now()
	logger := s.logger.WithSession(sessionID)

	var out Outcome
	err := s.locker.WithSessionLock(ctx, sessionID, func(lockCtx context.Context) error {
		profile, err := s.store.Load(lockCtx, sessionID)
		if errors.Is(err, session.ErrNotFound) {
			profile = session.New(sessionID, s.now().UTC())
		} else if err != nil {
			return fmt.Errorf("load session: %w", err)
		}

		out, err = s.engine.Step(lockCtx, profile, utterance)
		if err != nil {
			return err
		}

		out.Profile.UpdatedAt = s.now().UTC()
		if err := s.store.Save(lockCtx, out.Profile); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("turn failed", "error", err)
		return Reply{}, err
	}

	if out.Err != nil {
		logger.Debug("turn recovered", "intent", string(out.Intent), "error", out.Err)
	}

	reply := Reply{
		Text:   out.Reply,
		Intent: out.Intent,
		Step:   out.Profile.Step,
	}

	if out.Fallback {
		reply.Text = s.respond(ctx, logger, out.Seed, utterance)
	}

	if out.Booked != nil {
		reply.AppointmentID = out.Booked.ID
		s.metrics.ObserveBooking()
		s.sendConfirmation(ctx, logger, out)
	}

	s.metrics.ObserveTurn(string(out.Intent), s.now().Sub(start).Seconds())
	logger.Info("turn processed",
		"intent", string(out.Intent),
		"step", string(reply.Step),
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return reply, nil
}

// respond asks the completer for a free-form reply within the fallback timeout.
func (s *Service) respond(ctx context.Context, logger *logging.Logger, seed llm.Seed, utterance string) string {
	callCtx, cancel := context.WithTimeout(ctx, s.fallbackTimeout)
	defer cancel()

	start := s.now()
	text, err := s.completer.Complete(callCtx, seed, utterance)
	elapsed := s.now().Sub(start).Seconds()

	switch {
	case err == nil && strings.TrimSpace(text) != "":
		s.metrics.ObserveProviderCall("", elapsed)
		return text
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		s.metrics.ObserveProviderCall("timeout", elapsed)
		logger.Warn("completer timed out", "timeout", s.fallbackTimeout.String())
		return replyProviderTimeout
	default:
		if err == nil {
			err = fmt.Errorf("%w: empty completion", llm.ErrProvider)
		}
		s.metrics.ObserveProviderCall("error", elapsed)
		logger.Warn("completer failed", "error", err)
		return replyProviderError
	}
}

func (s *Service) sendConfirmation(ctx context.Context, logger *logging.Logger, out Outcome) {
	if s.notifier == nil || out.Booked == nil || out.Doctor == nil {
		return
	}

	err := s.notifier.NotifyBookingConfirmed(ctx, notify.Confirmation{
		AppointmentID: out.Booked.ID,
		PatientName:   out.Booked.PatientName,
		PatientEmail:  out.Booked.PatientEmail,
		DoctorName:    out.Doctor.Name,
		Specialty:     out.Doctor.Specialty,
		Day:           out.Booked.Day,
		Slot:          out.Booked.Slot,
		Location:      out.Doctor.Location,
	})
	if err != nil {
		s.metrics.ObserveNotifyFailure()
		logger.Warn("booking confirmation not delivered",
			"appointment_id", out.Booked.ID,
			"error", err,
		)
	}
}
