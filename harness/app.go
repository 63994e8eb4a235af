package harness

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// App is the application under test. The harness treats it as an opaque
// collaborator: it opens clients from it, asks it to serve a live endpoint,
// and reads its serving configuration. Everything else the application can do
// is between it and the tests.
type App interface {
	// Client opens a simulated request-issuing client bound to this
	// application. useCookies controls whether the client persists cookies
	// across requests within one test; opts is an open-ended bag of
	// construction options whose keys are defined by the application.
	Client(useCookies bool, opts ldvalue.Value) (Client, error)

	// Serve runs the application's request loop on host:port, blocking until
	// the process exits. Implementations must serve from a single stable
	// process for the whole run (no autoreload or re-exec).
	Serve(host string, port int) error

	// Config looks up a serving configuration value such as "HOST" or "PORT".
	Config(key string) (value string, ok bool)
}

// Client is a simulated request-issuing client scoped to a single test
// invocation: the harness opens one before the test and closes it afterward,
// so cookie jars and session state never leak between tests. Its request API
// is defined by the application.
type Client interface {
	Close() error
}

// ClientConfig controls how a case opens its per-test clients.
type ClientConfig struct {
	// UseCookies makes the client persist cookies across requests within one
	// test.
	UseCookies bool
	// Options is passed through to App.Client unmodified.
	Options ldvalue.Value
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{UseCookies: true, Options: ldvalue.Null()}
}

// ClientOption adjusts a case's ClientConfig.
type ClientOption func(*ClientConfig)

// WithCookies overrides the default cookie-persistence policy for the case's
// clients. The default is to persist cookies.
func WithCookies(use bool) ClientOption {
	return func(cfg *ClientConfig) { cfg.UseCookies = use }
}

// WithClientOptions supplies the application-defined options bag for the
// case's clients.
func WithClientOptions(opts ldvalue.Value) ClientOption {
	return func(cfg *ClientConfig) { cfg.Options = opts }
}
