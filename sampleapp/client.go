package sampleapp

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// clientOrigin is the synthetic origin simulated requests are issued against;
// no network listener exists for it.
const clientOrigin = "http://blogapp.test"

// Client issues requests directly against the application's handler without
// opening a socket, the way a browser session would. One Client is scoped to
// one test invocation; the harness closes it when the test finishes.
//
// Recognized construction options: "headers", an object of header values to
// send with every request.
type Client struct {
	app     *BlogApp
	jar     http.CookieJar // nil when cookie persistence is off
	headers http.Header
}

func newClient(app *BlogApp, useCookies bool, opts ldvalue.Value) *Client {
	c := &Client{app: app, headers: make(http.Header)}
	if useCookies {
		c.jar, _ = cookiejar.New(nil)
	}
	extra := opts.GetByKey("headers")
	for _, k := range extra.Keys() {
		c.headers.Set(k, extra.GetByKey(k).StringValue())
	}
	return c
}

// Do sends one simulated request. A non-nil body is JSON-encoded.
func (c *Client) Do(method, path string, body any) (*http.Response, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, clientOrigin+path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	rec := httptest.NewRecorder()
	c.app.router.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func (c *Client) Get(path string) (*http.Response, error) {
	return c.Do(http.MethodGet, path, nil)
}

func (c *Client) Post(path string, body any) (*http.Response, error) {
	return c.Do(http.MethodPost, path, body)
}

func (c *Client) Put(path string, body any) (*http.Response, error) {
	return c.Do(http.MethodPut, path, body)
}

func (c *Client) Delete(path string) (*http.Response, error) {
	return c.Do(http.MethodDelete, path, nil)
}

// Close releases the client's session state. Simulated clients hold no
// external resources; Close exists to satisfy the per-test scoped
// acquisition contract.
func (c *Client) Close() error {
	c.jar = nil
	return nil
}
