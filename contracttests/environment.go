package contracttests

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/reservekit/api-contract-tests/apispec"
	"github.com/reservekit/api-contract-tests/autowrap"
	"github.com/reservekit/api-contract-tests/callmetrics"
	"github.com/reservekit/api-contract-tests/config"
	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/stubservice"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/go-chi/chi/v5"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
)

// DefaultStubBaseURL is the base URL of the stub service when none is configured. Requests
// never leave the process, so the host is only a label in call records.
const DefaultStubBaseURL = "http://reservations.stub"

// Environment is the state shared by every test in a run.
type Environment struct {
	Config     config.Config
	Document   *apispec.Document
	Controller *mock.Controller
	Client     *transport.Client
	Factory    *transport.Factory
	Stub       *transport.Client
	Guard      *autowrap.Guard
	Metrics    *callmetrics.Collector
	logOutput  *logRouter
}

// NewEnvironment builds a controller, a wrapped client, a factory of wrapped clients, and a
// wrapped HTTP client talking to an in-process stub of the documented API. Call
// records are written to the debug output of the test that made the call; between tests
// they go to fallback, or os.Stdout if fallback is nil. A nil document means the built-in
// one.
func NewEnvironment(
	cfg config.Config,
	doc *apispec.Document,
	metrics *callmetrics.Collector,
	fallback io.Writer,
) *Environment {
	if doc == nil {
		doc = apispec.Builtin()
	}
	if fallback == nil {
		fallback = os.Stdout
	}
	out := &logRouter{fallback: fallback}
	ctrl := mock.New()
	client := ctrl.NewClient()
	factory := ctrl.NewFactory()
	stub := newStubClient(cfg, doc)
	guard := autowrap.New(cfg, out).WithMetrics(metrics)
	guard.Install(ctrl, client, stub)
	guard.InstallFactory(factory)
	return &Environment{
		Config:     cfg,
		Document:   doc,
		Controller: ctrl,
		Client:     client,
		Factory:    factory,
		Stub:       stub,
		Guard:      guard,
		Metrics:    metrics,
		logOutput:  out,
	}
}

// newStubClient serves the document under the path of the configured base URL, so that
// "https://host/v1" routes "/v1/menus/..." to the stub's "/menus/...".
func newStubClient(cfg config.Config, doc *apispec.Document) *transport.Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultStubBaseURL
	}
	var handler http.Handler = stubservice.New(doc, stubservice.Options{RequireAuth: true})
	if u, err := url.Parse(baseURL); err == nil && strings.Trim(u.Path, "/") != "" {
		r := chi.NewRouter()
		r.Mount("/"+strings.Trim(u.Path, "/"), handler)
		handler = r
	}
	return transport.NewClient(transport.NewHTTPCore(httphelpers.ClientFromHandler(handler), baseURL))
}

// logRouter sends call records to whichever test is currently running.
type logRouter struct {
	fallback io.Writer
	target   io.Writer
	lock     sync.Mutex
}

func (r *logRouter) route(w io.Writer) {
	r.lock.Lock()
	r.target = w
	r.lock.Unlock()
}

func (r *logRouter) Write(p []byte) (int, error) {
	r.lock.Lock()
	w := r.target
	if w == nil {
		w = r.fallback
	}
	r.lock.Unlock()
	return w.Write(p)
}
