package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"

	"message-relay-backend/internal/common/errors"
	"message-relay-backend/internal/features/relay/models"
	"message-relay-backend/internal/features/relay/tracker"
	"message-relay-backend/internal/platform/metrics"
)

const publishTimeout = 2 * time.Second

// Sender delivers a text through the Telegram bot identified by token.
type Sender interface {
	SendMessage(ctx context.Context, token, chatID, text string) error
}

// EventPublisher records relay events somewhere outside the process.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.Event) error
}

type RelayService interface {
	// Send counts the message for address and either captures the address
	// or delivers the message. Tracker state is committed before delivery
	// and is not rolled back when delivery fails.
	Send(ctx context.Context, address, message string) (tracker.Outcome, error)
	Arm(ctx context.Context, botToken, chatID string) (bool, error)
	Disarm(ctx context.Context) bool
	Status() map[string]int
	CaptureStatus() models.CaptureStatus
	ResetAll(ctx context.Context)
	ResetAddress(ctx context.Context, address string)
}

type Options struct {
	AttemptLimit int
	EscapeHTML   bool
}

type relayService struct {
	tracker   *tracker.Tracker
	sender    Sender
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	opts      Options
	now       func() time.Time
}

// NewRelayService wires the tracker to a sender. publisher and m may be nil.
func NewRelayService(t *tracker.Tracker, sender Sender, publisher EventPublisher, m *metrics.Metrics, logger zerolog.Logger, opts Options) RelayService {
	if opts.AttemptLimit <= 0 {
		opts.AttemptLimit = 10
	}
	if m != nil {
		t.Observe(func(st tracker.Stats) {
			m.SetState(st.Addresses, st.Grants, st.Armed)
		})
	}
	return &relayService{
		tracker:   t,
		sender:    sender,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With().Str("component", "relay").Logger(),
		opts:      opts,
		now:       time.Now,
	}
}

func (s *relayService) Send(ctx context.Context, address, message string) (tracker.Outcome, error) {
	if message == "" {
		return tracker.Outcome{}, errors.NewValidationError("message", "required")
	}

	out := s.tracker.Handle(address)
	s.metrics.Message(out.Kind.String())

	if out.Captured() {
		s.logger.Info().Str("ip", address).Msg("Address captured")
		s.publish(ctx, models.Event{Type: models.EventCaptured, Address: address, Attempts: out.Count, Redirected: true})
		return out, nil
	}

	text := s.FormatMessage(message, out.Address, out.Count)
	if err := s.sender.SendMessage(ctx, out.Credentials.Token, out.Credentials.ChatID, text); err != nil {
		s.metrics.DeliveryFailed()
		s.publish(ctx, models.Event{
			Type:       models.EventDeliveryFailed,
			Address:    address,
			Attempts:   out.Count,
			Redirected: out.Redirected,
			ChatID:     out.Credentials.ChatID,
			Error:      err.Error(),
		})
		return out, errors.NewTelegramAPIError("sendMessage", err).
			WithDetail("ip", address)
	}

	s.logger.Debug().
		Str("ip", address).
		Int("attempts", out.Count).
		Bool("redirected", out.Redirected).
		Msg("Message forwarded")
	s.publish(ctx, models.Event{
		Type:       models.EventForwarded,
		Address:    address,
		Attempts:   out.Count,
		Redirected: out.Redirected,
		ChatID:     out.Credentials.ChatID,
	})
	return out, nil
}

// FormatMessage renders the text delivered to Telegram.
func (s *relayService) FormatMessage(message, address string, count int) string {
	if s.opts.EscapeHTML {
		message = html.EscapeString(message)
		address = html.EscapeString(address)
	}
	return fmt.Sprintf("%s\nIP: %s\nAttempts: %d/%d", message, address, count, s.opts.AttemptLimit)
}

func (s *relayService) Arm(ctx context.Context, botToken, chatID string) (bool, error) {
	if botToken == "" {
		return false, errors.NewValidationError("botToken", "required")
	}
	if chatID == "" {
		return false, errors.NewValidationError("chatId", "required")
	}

	replaced := s.tracker.Arm(tracker.Credentials{Token: botToken, ChatID: chatID})
	s.metrics.Admin("arm")

	if replaced {
		s.logger.Warn().Str("chat_id", chatID).Msg("Pending capture replaced by a new one")
	} else {
		s.logger.Info().Str("chat_id", chatID).Msg("Capture armed")
	}
	s.publish(ctx, models.Event{Type: models.EventArmed, ChatID: chatID})
	return replaced, nil
}

func (s *relayService) Disarm(ctx context.Context) bool {
	was := s.tracker.Disarm()
	s.metrics.Admin("disarm")
	if was {
		s.logger.Info().Msg("Pending capture cancelled")
		s.publish(ctx, models.Event{Type: models.EventDisarmed})
	}
	return was
}

func (s *relayService) Status() map[string]int {
	return s.tracker.Snapshot()
}

func (s *relayService) CaptureStatus() models.CaptureStatus {
	st := s.tracker.Stats()
	return models.CaptureStatus{Armed: st.Armed, Grants: st.Grants, Addresses: st.Addresses}
}

func (s *relayService) ResetAll(ctx context.Context) {
	s.tracker.ResetAll()
	s.metrics.Admin("reset_all")
	s.logger.Info().Msg("All addresses reset")
	s.publish(ctx, models.Event{Type: models.EventReset})
}

func (s *relayService) ResetAddress(ctx context.Context, address string) {
	s.tracker.ResetAddress(address)
	s.metrics.Admin("reset_address")
	s.logger.Info().Str("ip", address).Msg("Address reset")
	s.publish(ctx, models.Event{Type: models.EventReset, Address: address})
}

// publish is best effort: a lost event never fails the request.
func (s *relayService) publish(ctx context.Context, ev models.Event) {
	if s.publisher == nil {
		return
	}
	ev.At = s.now()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("event", string(ev.Type)).Msg("Failed to publish relay event")
	}
}
