package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = "test-token-123"

func lastConfig(t *testing.T, ctrl *mock.Controller, m transport.Method) *transport.RequestConfig {
	calls := ctrl.Calls(m)
	require.NotEmpty(t, calls)
	return calls[len(calls)-1].Config
}

func TestInjectsBearerTokenWhenAbsent(t *testing.T) {
	for _, m := range transport.AllMethods {
		t.Run(string(m), func(t *testing.T) {
			ctrl := mock.New()
			client := ctrl.NewClient()
			require.True(t, Install(client, token))
			ctrl.ScheduleStickySuccess(m, nil)

			_, err := client.Do(context.Background(), m, "/r", nil, nil)
			require.NoError(t, err)
			assert.Equal(t, "Bearer "+token, lastConfig(t, ctrl, m).Header("Authorization"))

			cfg := transport.WithHeader("Idempotency-Key", "k")
			_, err = client.Do(context.Background(), m, "/r", nil, cfg)
			require.NoError(t, err)
			got := lastConfig(t, ctrl, m)
			assert.Equal(t, "Bearer "+token, got.Header("Authorization"))
			assert.Equal(t, "k", got.Header("Idempotency-Key"))
			assert.Equal(t, "", cfg.Header("Authorization"), "caller's config must not be modified")
		})
	}
}

func TestExistingCredentialsPassThrough(t *testing.T) {
	for _, key := range []string{"Authorization", "authorization"} {
		ctrl := mock.New()
		client := ctrl.NewClient()
		Install(client, token)
		ctrl.ScheduleSuccess(transport.MethodGet, nil)

		cfg := &transport.RequestConfig{Headers: http.Header{key: {"Bearer caller-token"}}}
		_, err := client.Get(context.Background(), "/r", cfg)
		require.NoError(t, err)
		got := lastConfig(t, ctrl, transport.MethodGet)
		assert.Same(t, cfg, got)
		assert.Equal(t, []string{"Bearer caller-token"}, got.Headers[key])
	}
}

func TestSkipMarkerSuppressesInjection(t *testing.T) {
	for _, key := range []string{"X-Skip-Auth", "x-skip-auth"} {
		ctrl := mock.New()
		client := ctrl.NewClient()
		Install(client, token)
		ctrl.ScheduleError(transport.MethodPost, 401, map[string]any{"errorCode": "UNAUTHORIZED"})

		cfg := &transport.RequestConfig{Headers: http.Header{key: {"true"}}}
		_, err := client.Post(context.Background(), "/reservations", nil, cfg)
		te, ok := transport.AsError(err)
		require.True(t, ok)
		assert.Equal(t, 401, te.Status())
		assert.False(t, HasCredentials(lastConfig(t, ctrl, transport.MethodPost)))
	}
}

func TestSkipMarkerMustBeTrue(t *testing.T) {
	assert.False(t, SkipRequested(transport.WithHeader(SkipHeader, "false")))
	assert.True(t, SkipRequested(transport.WithHeader(SkipHeader, "TRUE")))
	assert.False(t, SkipRequested(nil))
}

func TestNoTokenIsASilentNoOp(t *testing.T) {
	ctrl := mock.New()
	client := ctrl.NewClient()
	assert.False(t, Install(client, ""))
	assert.False(t, client.Installed(Name))
	assert.False(t, Install(nil, token))
	assert.False(t, InstallOnCreate(nil, token))
	assert.False(t, InstallOnCreate(ctrl.NewFactory(), ""))
}

func TestInstallTwiceWrapsOnce(t *testing.T) {
	ctrl := mock.New()
	client := ctrl.NewClient()
	assert.True(t, Install(client, token))
	assert.False(t, Install(client, token))
	assert.Equal(t, []string{Name}, client.Chain(transport.MethodPost).Names())

	ctrl.ScheduleSuccess(transport.MethodPost, nil)
	_, err := client.Post(context.Background(), "/r", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, ctrl.CallCount(transport.MethodPost))
	assert.Equal(t, []string{"Bearer " + token}, lastConfig(t, ctrl, transport.MethodPost).Headers.Values("Authorization"))
}

func TestInstallOnCreatePatchesFactoryOnce(t *testing.T) {
	ctrl := mock.New()
	f := ctrl.NewFactory()
	assert.True(t, InstallOnCreate(f, token))
	assert.False(t, InstallOnCreate(f, token))

	client := f.New()
	ctrl.ScheduleSuccess(transport.MethodPatch, nil)
	_, err := client.Patch(context.Background(), "/r", map[string]any{"a": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, lastConfig(t, ctrl, transport.MethodPatch).Header("Authorization"))
}

func TestFactoryClientKeepsCredentialsAfterClearAll(t *testing.T) {
	ctrl := mock.New()
	f := ctrl.NewFactory()
	InstallOnCreate(f, token)
	client := f.New()

	ctrl.ClearAll()
	ctrl.ScheduleSuccess(transport.MethodGet, nil)
	_, err := client.Get(context.Background(), "/menus", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, lastConfig(t, ctrl, transport.MethodGet).Header("Authorization"))
}
