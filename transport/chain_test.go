package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tracingInterceptor struct {
	name  string
	layer Layer
	trace *[]string
}

func (i tracingInterceptor) Name() string { return i.name }

func (i tracingInterceptor) Layer() Layer { return i.layer }

func (i tracingInterceptor) Wrap(method Method, next VerbFunc) VerbFunc {
	return func(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
		*i.trace = append(*i.trace, i.name)
		return next(ctx, url, body, cfg)
	}
}

func countingCore(count *int) func(Method) VerbFunc {
	return func(m Method) VerbFunc {
		return func(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
			*count++
			return &Response{Status: 200, StatusText: "OK", Data: string(m) + " " + url}, nil
		}
	}
}

func TestChainComposesByLayerNotInstallOrder(t *testing.T) {
	var trace []string
	count := 0
	c := NewClient(countingCore(&count))

	c.Install(tracingInterceptor{name: "auth", layer: LayerAuth, trace: &trace})
	c.Install(tracingInterceptor{name: "metrics", layer: LayerMetrics, trace: &trace})
	c.Install(tracingInterceptor{name: "logger", layer: LayerLogger, trace: &trace})

	resp, err := c.Post(context.Background(), "/things", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "POST /things", resp.Data)
	assert.Equal(t, []string{"metrics", "logger", "auth"}, trace)
	assert.Equal(t, []string{"metrics", "logger", "auth"}, c.Chain(MethodPost).Names())
	assert.Equal(t, 1, count)
}

func TestInstallingTwiceLeavesOneLayer(t *testing.T) {
	var trace []string
	count := 0
	c := NewClient(countingCore(&count))
	i := tracingInterceptor{name: "logger", layer: LayerLogger, trace: &trace}

	assert.Equal(t, len(AllMethods), c.Install(i))
	assert.Equal(t, 0, c.Install(i))
	assert.True(t, c.Installed("logger"))

	_, err := c.Get(context.Background(), "/a", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"logger"}, trace)
	assert.Equal(t, 1, count)
}

func TestResetDropsInterceptorsAndRunsStaleHooksOnce(t *testing.T) {
	var trace []string
	count := 0
	c := NewClient(countingCore(&count))
	i := tracingInterceptor{name: "logger", layer: LayerLogger, trace: &trace}
	c.Install(i)

	hookCalls := 0
	assert.True(t, c.OnStale("rearm", func(c *Client) {
		hookCalls++
		c.Install(i)
	}))
	assert.False(t, c.OnStale("rearm", func(*Client) { hookCalls += 100 }))

	c.Reset()
	assert.False(t, c.Installed("logger"))

	_, err := c.Delete(context.Background(), "/a", nil)
	require.NoError(t, err)
	_, err = c.Delete(context.Background(), "/b", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, hookCalls)
	assert.True(t, c.Installed("logger"))
	assert.Equal(t, []string{"logger", "logger"}, trace)
}

func TestFactoryInstallsRegisteredInterceptorsOnNewClients(t *testing.T) {
	var trace []string
	count := 0
	f := NewFactory(func() *Client { return NewClient(countingCore(&count)) })
	i := tracingInterceptor{name: "auth", layer: LayerAuth, trace: &trace}

	assert.True(t, f.Use(i))
	assert.False(t, f.Use(i))
	assert.True(t, f.Patched("auth"))

	c1, c2 := f.New(), f.New()
	_, err := c1.Patch(context.Background(), "/x", map[string]any{"a": 1}, nil)
	require.NoError(t, err)
	_, err = c2.Put(context.Background(), "/y", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"auth", "auth"}, trace)
	assert.Equal(t, 2, count)
}

func TestFactoryClientsGetInterceptorsBackAfterReset(t *testing.T) {
	var trace []string
	count := 0
	f := NewFactory(func() *Client { return NewClient(countingCore(&count)) })
	f.Use(tracingInterceptor{name: "auth", layer: LayerAuth, trace: &trace})
	c1, c2 := f.New(), f.New()

	c1.Reset()
	c2.Reset()
	_, err := c1.Get(context.Background(), "/x", nil)
	require.NoError(t, err)
	assert.True(t, c1.Installed("auth"))
	assert.Equal(t, []string{"auth"}, trace)

	assert.False(t, c2.Installed("auth"))
	assert.Equal(t, 1, f.Rearm())
	assert.True(t, c2.Installed("auth"))
	assert.Equal(t, 0, f.Rearm())
}

func TestRequestConfigCloneIsIndependent(t *testing.T) {
	orig := WithHeader("X-Request-Id", "1")
	clone := orig.Clone()
	clone.Headers.Set("Authorization", "Bearer t")

	assert.Equal(t, "", orig.Header("Authorization"))
	assert.Equal(t, "1", clone.Header("X-Request-Id"))

	var nilConfig *RequestConfig
	assert.NotNil(t, nilConfig.Clone().Headers)
	assert.Equal(t, "", nilConfig.Header("anything"))
}

func TestErrorMessages(t *testing.T) {
	httpErr := &Error{Response: &ErrorResponse{Status: 404}}
	assert.Equal(t, "request failed with status code 404", httpErr.Error())
	assert.False(t, httpErr.IsNetworkError())
	assert.Equal(t, 404, httpErr.Status())

	netErr := &Error{Code: CodeTimeout, Message: "timeout of 5000ms exceeded"}
	assert.Equal(t, "ECONNABORTED: timeout of 5000ms exceeded", netErr.Error())
	assert.True(t, netErr.IsNetworkError())
	assert.Equal(t, 0, netErr.Status())

	found, ok := AsError(netErr)
	assert.True(t, ok)
	assert.Same(t, netErr, found)
}
