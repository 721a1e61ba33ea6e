package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"message-relay-backend/internal/common/errors"
	"message-relay-backend/internal/features/relay/models"
	"message-relay-backend/internal/features/relay/tracker"
	"message-relay-backend/internal/platform/metrics"
)

type sentMessage struct {
	token, chatID, text string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, token, chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{token, chatID, text})
	return f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) types() []models.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.EventType, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

var defaults = tracker.Credentials{Token: "DT", ChatID: "DC"}

func newService(sender Sender, pub EventPublisher) RelayService {
	return NewRelayService(tracker.New(defaults), sender, pub, metrics.New(), zerolog.New(io.Discard), Options{AttemptLimit: 10, EscapeHTML: true})
}

func TestSendForwardsWithDefaults(t *testing.T) {
	sender := &fakeSender{}
	pub := &fakePublisher{}
	svc := newService(sender, pub)

	for want := 1; want <= 3; want++ {
		out, err := svc.Send(context.Background(), "5.6.7.8", "hi")
		require.NoError(t, err)
		assert.Equal(t, want, out.Count)
		assert.False(t, out.Redirected)
	}

	require.Len(t, sender.sent, 3)
	assert.Equal(t, sentMessage{"DT", "DC", "hi\nIP: 5.6.7.8\nAttempts: 3/10"}, sender.sent[2])
	assert.Equal(t, []models.EventType{models.EventForwarded, models.EventForwarded, models.EventForwarded}, pub.types())
	assert.Equal(t, map[string]int{"5.6.7.8": 3}, svc.Status())
}

func TestSendCaptureDoesNotDeliver(t *testing.T) {
	sender := &fakeSender{}
	pub := &fakePublisher{}
	svc := newService(sender, pub)
	ctx := context.Background()

	replaced, err := svc.Arm(ctx, "T1", "C1")
	require.NoError(t, err)
	assert.False(t, replaced)

	out, err := svc.Send(ctx, "1.2.3.4", "first")
	require.NoError(t, err)
	assert.True(t, out.Captured())
	assert.Empty(t, sender.sent)

	out, err = svc.Send(ctx, "1.2.3.4", "second")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.True(t, out.Redirected)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "T1", sender.sent[0].token)
	assert.Equal(t, "C1", sender.sent[0].chatID)

	assert.Equal(t, []models.EventType{models.EventArmed, models.EventCaptured, models.EventForwarded}, pub.types())
	assert.Equal(t, models.CaptureStatus{Armed: false, Grants: 1, Addresses: 1}, svc.CaptureStatus())
}

func TestSendDeliveryFailureKeepsState(t *testing.T) {
	sender := &fakeSender{err: stderrors.New("connection refused")}
	pub := &fakePublisher{}
	svc := newService(sender, pub)

	_, err := svc.Send(context.Background(), "a", "x")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTelegramAPI, appErr.Code)

	out, err := svc.Send(context.Background(), "a", "x")
	require.Error(t, err)
	assert.Equal(t, 2, out.Count, "failed delivery must not roll back the counter")
	assert.Equal(t, models.EventDeliveryFailed, pub.types()[1])
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, nil)

	_, err := svc.Send(context.Background(), "a", "")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsValidation())
	assert.Empty(t, svc.Status(), "rejected input must not be counted")
}

func TestArmValidationAndReplace(t *testing.T) {
	svc := newService(&fakeSender{}, nil)
	ctx := context.Background()

	_, err := svc.Arm(ctx, "", "C")
	assert.Error(t, err)
	_, err = svc.Arm(ctx, "T", "")
	assert.Error(t, err)
	assert.False(t, svc.CaptureStatus().Armed)

	replaced, err := svc.Arm(ctx, "T1", "C1")
	require.NoError(t, err)
	assert.False(t, replaced)
	replaced, err = svc.Arm(ctx, "T2", "C2")
	require.NoError(t, err)
	assert.True(t, replaced)

	out, err := svc.Send(ctx, "new", "x")
	require.NoError(t, err)
	require.True(t, out.Captured())

	out, err = svc.Send(ctx, "new", "x")
	require.NoError(t, err)
	assert.Equal(t, "T2", out.Credentials.Token, "last arm wins")
}

func TestDisarm(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(&fakeSender{}, pub)
	ctx := context.Background()

	assert.False(t, svc.Disarm(ctx))
	_, err := svc.Arm(ctx, "T", "C")
	require.NoError(t, err)
	assert.True(t, svc.Disarm(ctx))

	out, err := svc.Send(ctx, "fresh", "x")
	require.NoError(t, err)
	assert.False(t, out.Captured())
	assert.Equal(t, []models.EventType{models.EventArmed, models.EventDisarmed, models.EventForwarded}, pub.types())
}

func TestResetAddressAndAll(t *testing.T) {
	svc := newService(&fakeSender{}, nil)
	ctx := context.Background()

	_, _ = svc.Send(ctx, "a", "x")
	_, _ = svc.Send(ctx, "a", "x")
	_, _ = svc.Send(ctx, "b", "x")

	svc.ResetAddress(ctx, "a")
	assert.Equal(t, map[string]int{"b": 1}, svc.Status())

	out, err := svc.Send(ctx, "a", "x")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)

	svc.ResetAll(ctx)
	assert.Empty(t, svc.Status())
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &fakePublisher{err: stderrors.New("redis down")}
	svc := newService(&fakeSender{}, pub)

	_, err := svc.Send(context.Background(), "a", "x")
	assert.NoError(t, err)
}

func TestFormatMessageEscapesHTML(t *testing.T) {
	svc := newService(&fakeSender{}, nil).(*relayService)

	got := svc.FormatMessage("<b>hi</b> & bye", "1.2.3.4", 4)
	assert.Equal(t, "&lt;b&gt;hi&lt;/b&gt; &amp; bye\nIP: 1.2.3.4\nAttempts: 4/10", got)

	svc.opts.EscapeHTML = false
	assert.Equal(t, "<b>hi</b>\nIP: 1.2.3.4\nAttempts: 1/10", svc.FormatMessage("<b>hi</b>", "1.2.3.4", 1))
}

func TestConcurrentSendCapturesOnce(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, nil)
	_, err := svc.Arm(context.Background(), "T", "C")
	require.NoError(t, err)

	addrs := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5", "10.0.0.6"}
	var captured int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, a := range addrs {
		wg.Add(1)
		go func(a string) {
			defer wg.Done()
			out, err := svc.Send(context.Background(), a, "x")
			assert.NoError(t, err)
			if out.Captured() {
				mu.Lock()
				captured++
				mu.Unlock()
			}
		}(a)
	}
	wg.Wait()

	assert.Equal(t, 1, captured)
	assert.Len(t, sender.sent, len(addrs)-1)
	for _, m := range sender.sent {
		assert.Equal(t, "DT", m.token)
	}
}

func TestGaugesMatchTrackerAfterConcurrentSends(t *testing.T) {
	m := metrics.New()
	svc := NewRelayService(tracker.New(defaults), &fakeSender{}, nil, m, zerolog.New(io.Discard), Options{})

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Send(context.Background(), fmt.Sprintf("10.3.0.%d", i), "x")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf("relay_tracked_addresses %d\n", n))
	assert.Contains(t, rec.Body.String(), "relay_capture_armed 0\n")
}
