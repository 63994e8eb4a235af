package harness

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// eventLog records lifecycle events from fake resources so tests can assert
// ordering across setup, test, teardown, and disposal.
type eventLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *eventLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type fakeClient struct {
	id       int
	events   *eventLog
	closed   bool
	closeErr error
}

func (c *fakeClient) Close() error {
	c.closed = true
	if c.events != nil {
		c.events.add("close client-%d", c.id)
	}
	return c.closeErr
}

// fakeApp stands in for an application under test. Serve blocks forever
// unless a handler is set, in which case it serves real HTTP on the given
// address.
type fakeApp struct {
	events     *eventLog
	settings   map[string]string
	handler    http.Handler
	clientErr  error
	nextClient int
}

func newFakeApp() *fakeApp {
	return &fakeApp{events: &eventLog{}}
}

func (a *fakeApp) Client(useCookies bool, opts ldvalue.Value) (Client, error) {
	if a.clientErr != nil {
		return nil, a.clientErr
	}
	a.nextClient++
	a.events.add("open client-%d cookies=%v", a.nextClient, useCookies)
	return &fakeClient{id: a.nextClient, events: a.events}, nil
}

func (a *fakeApp) Serve(host string, port int) error {
	if a.handler == nil {
		select {} // never becomes ready
	}
	l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	return http.Serve(l, a.handler)
}

func (a *fakeApp) Config(key string) (string, bool) {
	v, ok := a.settings[key]
	return v, ok
}
