package harness

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/appunit/appunit/framework"
)

const (
	defaultHost             = "127.0.0.1"
	defaultPort             = 5000
	defaultReadinessTimeout = time.Second * 10
	readinessProbeInterval  = time.Millisecond * 10
	readinessDialTimeout    = time.Second
)

// SuiteConfig is the resolved serving configuration of a live suite.
type SuiteConfig struct {
	Host string
	Port int
	// Timeout bounds the wait for the server to accept its first connection.
	Timeout time.Duration
}

// Addr returns the host:port the suite serves on.
func (c SuiteConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LiveSuite serves one application over a real socket and runs its member
// cases against it. The server is started on a background goroutine the first
// time Run is called and is never stopped: its lifetime is bounded by the
// process. A live suite is therefore a process-scoped singleton resource, not
// a freely composable value — run it once per process invocation.
type LiveSuite struct {
	app   App
	cfg   SuiteConfig
	suite *Suite

	boot    sync.Once
	bootErr error
}

// NewLiveSuite builds a live suite around app. The host and port come from
// the application's configuration ("HOST", default 127.0.0.1, and "PORT",
// default 5000); timeout bounds the readiness wait, with a ten-second default
// when zero.
func NewLiveSuite(app App, timeout time.Duration, members ...Member) (*LiveSuite, error) {
	if app == nil {
		return nil, usageErrorf("live suite requires an application")
	}
	cfg := SuiteConfig{Host: defaultHost, Port: defaultPort, Timeout: timeout}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultReadinessTimeout
	}
	if v, ok := app.Config("HOST"); ok {
		cfg.Host = v
	}
	if v, ok := app.Config("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, usageErrorf("invalid PORT value %q", v)
		}
		cfg.Port = port
	}
	return &LiveSuite{app: app, cfg: cfg, suite: NewSuite("live", members...)}, nil
}

// Config returns the resolved serving configuration.
func (s *LiveSuite) Config() SuiteConfig { return s.cfg }

// ServerURL returns the base URL that will be injected into member cases.
func (s *LiveSuite) ServerURL() string {
	return fmt.Sprintf("http://%s:%d", s.cfg.Host, s.cfg.Port)
}

// Add appends members to the suite. Members added after the first Run are not
// injected.
func (s *LiveSuite) Add(members ...Member) *LiveSuite {
	s.suite.Add(members...)
	return s
}

// Run boots the server (first call only), blocks until the endpoint accepts a
// raw TCP connection or the readiness timeout elapses, injects the server URL
// and application handle into every member live case, and delegates to the
// ordinary sequential runner. A ReadinessTimeoutError is fatal: no member
// test runs and the results are empty.
func (s *LiveSuite) Run(r *Runner) (framework.Results, error) {
	s.boot.Do(func() { s.bootErr = s.bootstrap() })
	if s.bootErr != nil {
		return framework.Results{}, s.bootErr
	}
	s.injectAll()
	return r.Run(s.suite)
}

func (s *LiveSuite) bootstrap() error {
	// Fire and forget: the serving goroutine is never joined or cancelled.
	// The only synchronization with it is the readiness probe below.
	go func() {
		_ = s.app.Serve(s.cfg.Host, s.cfg.Port)
	}()
	return s.awaitReady()
}

// awaitReady probes the endpoint with raw TCP dials until one succeeds,
// closing the probe connection immediately, or until the timeout elapses.
func (s *LiveSuite) awaitReady() error {
	addr := s.cfg.Addr()
	deadline := time.NewTimer(s.cfg.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(readinessProbeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-deadline.C:
			return &ReadinessTimeoutError{Addr: addr, Timeout: s.cfg.Timeout}
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", addr, readinessDialTimeout)
			if err == nil {
				conn.Close()
				return nil
			}
		}
	}
}

// injectAll sets the server URL and application on every member live case,
// recursing one level into nested groups, mirroring how the runner
// distinguishes leaves from groups.
func (s *LiveSuite) injectAll() {
	url := s.ServerURL()
	for _, m := range s.suite.members {
		if m.group != nil {
			for _, inner := range m.group.members {
				s.injectLeaf(inner, url)
			}
			continue
		}
		s.injectLeaf(m, url)
	}
}

func (s *LiveSuite) injectLeaf(m Member, url string) {
	if lc, ok := m.leaf.(*LiveCase); ok {
		lc.inject(s.app, url)
	}
}
