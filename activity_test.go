package authgate_test

import (
	"context"
	"sync"
	"testing"

	"github.com/goliatone/go-authgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []authgate.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event authgate.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) types() []authgate.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]authgate.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func TestRecordActivityStampsTime(t *testing.T) {
	sink := &recordingSink{}
	authgate.RecordActivity(context.Background(), sink, authgate.NoopLogger(), authgate.ActivityEvent{
		EventType: authgate.ActivityEventAccountDeleted,
		AccountID: "1",
	})

	require.Len(t, sink.events, 1)
	assert.False(t, sink.events[0].OccurredAt.IsZero())
}

func TestRecordActivityIgnoresSinkFailure(t *testing.T) {
	failing := authgate.ActivitySinkFunc(func(context.Context, authgate.ActivityEvent) error {
		return assert.AnError
	})

	assert.NotPanics(t, func() {
		authgate.RecordActivity(context.Background(), failing, authgate.NoopLogger(), authgate.ActivityEvent{})
		authgate.RecordActivity(context.Background(), nil, nil, authgate.ActivityEvent{})
	})

	var nilFunc authgate.ActivitySinkFunc
	assert.NoError(t, nilFunc.Record(context.Background(), authgate.ActivityEvent{}))
}

func TestAccountServiceActivity(t *testing.T) {
	ctx := context.Background()
	service, registry, _ := newAccountService(t)
	sink := &recordingSink{}
	service.WithActivitySink(sink)

	_, err := service.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = service.Login(ctx, authgate.LoginRequest{Email: "u@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	_, err = service.Login(ctx, authgate.LoginRequest{Email: "u@example.com", Password: "Wr0ngPass!"})
	require.Error(t, err)

	_, err = service.Login(ctx, authgate.LoginRequest{Email: "ghost@example.com", Password: "Wr0ngPass!"})
	require.Error(t, err)

	registry.disable("u@example.com")
	_, err = service.Login(ctx, authgate.LoginRequest{Email: "u@example.com", Password: "Passw0rd!"})
	require.Error(t, err)

	assert.Equal(t, []authgate.ActivityEventType{
		authgate.ActivityEventAccountRegistered,
		authgate.ActivityEventLoginSuccess,
		authgate.ActivityEventLoginFailure,
		authgate.ActivityEventLoginFailure,
		authgate.ActivityEventLoginFailure,
	}, sink.types())

	assert.Equal(t, "1", sink.events[0].AccountID)
	assert.Equal(t, "password_mismatch", sink.events[2].Metadata["reason"])
	assert.Equal(t, "unknown_account", sink.events[3].Metadata["reason"])
	assert.Empty(t, sink.events[3].AccountID)
	assert.Equal(t, "account_disabled", sink.events[4].Metadata["reason"])
}
