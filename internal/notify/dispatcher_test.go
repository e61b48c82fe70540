package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobradar/pipeline-service/internal/model"
	"jobradar/pipeline-service/internal/notify"
)

type fakeStore map[string]string

func (f fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f[key]
	return v, ok, nil
}
func (f fakeStore) Set(_ context.Context, key, value string) error { f[key] = value; return nil }
func (f fakeStore) Delete(_ context.Context, key string) error     { delete(f, key); return nil }

type fakeSender struct {
	name  string
	err   error
	calls int
}

func (s *fakeSender) Name() string          { return s.name }
func (s *fakeSender) CredentialKey() string { return s.name + "_cred" }
func (s *fakeSender) Send(context.Context, string, *model.Record) error {
	s.calls++
	return s.err
}

func newDispatcher(store fakeStore, senders ...notify.Sender) *notify.Dispatcher {
	return notify.NewDispatcher(store, senders, zap.NewNop())
}

func rec() *model.Record {
	return &model.Record{IdentityHash: "h1", Title: "Engineer", Company: "Acme"}
}

func TestSendAlert_PartialFailureIsSuccess(t *testing.T) {
	a := &fakeSender{name: "a"}
	b := &fakeSender{name: "b", err: errors.New("webhook rejected")}
	c := &fakeSender{name: "c"}
	store := fakeStore{"a_cred": "x", "b_cred": "x", "c_cred": "x"}

	outcomes, err := newDispatcher(store, a, b, c).SendAlert(context.Background(), rec(), []string{"a", "b", "c"})
	require.NoError(t, err, "partial failure is best-effort success")
	require.Len(t, outcomes, 3)

	assert.True(t, outcomes[0].OK)
	assert.False(t, outcomes[1].OK)
	assert.Contains(t, outcomes[1].Error, "webhook rejected")
	assert.True(t, outcomes[2].OK)
}

func TestSendAlert_TotalFailureNamesAllChannels(t *testing.T) {
	a := &fakeSender{name: "a", err: errors.New("a down")}
	b := &fakeSender{name: "b", err: errors.New("b down")}
	c := &fakeSender{name: "c", err: errors.New("c down")}
	store := fakeStore{"a_cred": "x", "b_cred": "x", "c_cred": "x"}

	_, err := newDispatcher(store, a, b, c).SendAlert(context.Background(), rec(), []string{"a", "b", "c"})
	require.Error(t, err)
	for _, name := range []string{"a: a down", "b: b down", "c: c down"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestSendAlert_UnconfiguredChannelIsSkipped(t *testing.T) {
	configured := &fakeSender{name: "a"}
	unconfigured := &fakeSender{name: "b"}
	store := fakeStore{"a_cred": "x"} // no b_cred

	outcomes, err := newDispatcher(store, configured, unconfigured).
		SendAlert(context.Background(), rec(), []string{"a", "b"})
	require.NoError(t, err)

	assert.True(t, outcomes[0].OK)
	assert.True(t, outcomes[1].Skipped)
	assert.Equal(t, 0, unconfigured.calls, "unconfigured channel must not be invoked")
}

func TestSendAlert_AllSkippedIsNotFailure(t *testing.T) {
	a := &fakeSender{name: "a"}
	outcomes, err := newDispatcher(fakeStore{}, a).SendAlert(context.Background(), rec(), []string{"a"})
	require.NoError(t, err, "nothing attempted means nothing failed")
	assert.True(t, outcomes[0].Skipped)
}

func TestSendAlert_SkipNeverAbortsOthers(t *testing.T) {
	ok := &fakeSender{name: "ok"}
	store := fakeStore{"ok_cred": "x"}

	outcomes, err := newDispatcher(store, ok).SendAlert(context.Background(), rec(),
		[]string{"missing", "ok"})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Skipped, "unknown channel is skipped")
	assert.True(t, outcomes[1].OK)
	assert.Equal(t, 1, ok.calls)
}
