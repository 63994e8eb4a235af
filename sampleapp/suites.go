package sampleapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/appunit/appunit/framework"
	"github.com/appunit/appunit/harness"
)

// The cases below are the illustrative login/CRUD flows run by cmd/blogtests
// and by this repository's own tests.

// AuthCase covers registration, login, and logout through per-test simulated
// clients sharing one application.
func AuthCase(app *BlogApp) (*harness.ClientCase, error) {
	c, err := harness.NewClientCase("auth", app)
	if err != nil {
		return nil, err
	}

	c.Test("register then login", func(t *framework.T, hc harness.Client) {
		client := hc.(*Client)
		resp := post(t, client, "/auth/register", credentials{Username: "alfred", Password: "pennyworth"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp = post(t, client, "/auth/login", credentials{Username: "alfred", Password: "pennyworth"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	c.Test("rejects duplicate usernames", func(t *framework.T, hc harness.Client) {
		client := hc.(*Client)
		resp := post(t, client, "/auth/register", credentials{Username: "barbara", Password: "x"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp = post(t, client, "/auth/register", credentials{Username: "barbara", Password: "y"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	c.Test("rejects a bad password", func(t *framework.T, hc harness.Client) {
		client := hc.(*Client)
		resp := post(t, client, "/auth/register", credentials{Username: "lucius", Password: "fox"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp = post(t, client, "/auth/login", credentials{Username: "lucius", Password: "wrong"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	c.Test("logout drops the session", func(t *framework.T, hc harness.Client) {
		client := hc.(*Client)
		post(t, client, "/auth/register", credentials{Username: "selina", Password: "kyle"})
		post(t, client, "/auth/login", credentials{Username: "selina", Password: "kyle"})
		resp := post(t, client, "/posts", postInput{Title: "before logout"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp = post(t, client, "/auth/logout", nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp = post(t, client, "/posts", postInput{Title: "after logout"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	return c, nil
}

// BlogCase covers post CRUD with a fresh application (and database) per test.
// Its constructor is generator-shaped: the application is closed after the
// test resumes the fixture.
func BlogCase() (*harness.AppClientCase, error) {
	newApp := func(yield func(harness.App) bool) {
		app, err := New(Config{})
		if err != nil {
			panic(err)
		}
		yield(app)
		_ = app.Close()
	}

	c, err := harness.NewAppClientCase("blog", newApp)
	if err != nil {
		return nil, err
	}

	c.SetUp(func(t *framework.T, _ harness.App, hc harness.Client) {
		client := hc.(*Client)
		post(t, client, "/auth/register", credentials{Username: "author", Password: "secret"})
		resp := post(t, client, "/auth/login", credentials{Username: "author", Password: "secret"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	c.Test("create and list", func(t *framework.T, _ harness.App, hc harness.Client) {
		client := hc.(*Client)
		resp := post(t, client, "/posts", postInput{Title: "hello", Body: "first post"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var posts []Post
		decode(t, get(t, client, "/posts"), &posts)
		require.Len(t, posts, 1)
		require.Equal(t, "hello", posts[0].Title)
		require.Equal(t, "author", posts[0].Author)
	})

	c.Test("database is fresh per test", func(t *framework.T, _ harness.App, hc harness.Client) {
		client := hc.(*Client)
		var posts []Post
		decode(t, get(t, client, "/posts"), &posts)
		require.Empty(t, posts)
	})

	c.Test("update own post", func(t *framework.T, _ harness.App, hc harness.Client) {
		client := hc.(*Client)
		var created struct {
			ID int64 `json:"id"`
		}
		decode(t, post(t, client, "/posts", postInput{Title: "draft"}), &created)
		resp := put(t, client, fmt.Sprintf("/posts/%d", created.ID), postInput{Title: "final"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var p Post
		decode(t, get(t, client, fmt.Sprintf("/posts/%d", created.ID)), &p)
		require.Equal(t, "final", p.Title)
	})

	c.Test("delete own post", func(t *framework.T, _ harness.App, hc harness.Client) {
		client := hc.(*Client)
		var created struct {
			ID int64 `json:"id"`
		}
		decode(t, post(t, client, "/posts", postInput{Title: "doomed"}), &created)
		resp := del(t, client, fmt.Sprintf("/posts/%d", created.ID))
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp = get(t, client, fmt.Sprintf("/posts/%d", created.ID))
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	c.Test("cannot edit another author's post", func(t *framework.T, app harness.App, hc harness.Client) {
		client := hc.(*Client)
		var created struct {
			ID int64 `json:"id"`
		}
		decode(t, post(t, client, "/posts", postInput{Title: "mine"}), &created)

		other, err := app.(*BlogApp).Client(true, ldvalue.Null())
		require.NoError(t, err)
		defer other.Close()
		intruder := other.(*Client)
		post(t, intruder, "/auth/register", credentials{Username: "rival", Password: "x"})
		post(t, intruder, "/auth/login", credentials{Username: "rival", Password: "x"})
		resp := put(t, intruder, fmt.Sprintf("/posts/%d", created.ID), postInput{Title: "stolen"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	return c, nil
}

// LiveSmokeCase exercises a live endpoint over real HTTP. It must run inside
// a harness.LiveSuite.
func LiveSmokeCase() *harness.LiveCase {
	c := harness.NewLiveCase("live smoke")

	c.Test("serves posts over the network", func(t *framework.T, env *harness.LiveEnv) {
		resp, err := http.Get(env.ServerURL() + "/posts")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	c.Test("full login round trip", func(t *framework.T, env *harness.LiveEnv) {
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		session := &http.Client{Jar: jar}

		postJSON(t, session, env.ServerURL()+"/auth/register",
			credentials{Username: "remote", Password: "secret"}, http.StatusCreated)
		postJSON(t, session, env.ServerURL()+"/auth/login",
			credentials{Username: "remote", Password: "secret"}, http.StatusOK)
		postJSON(t, session, env.ServerURL()+"/posts",
			postInput{Title: "over the wire"}, http.StatusCreated)

		resp, err := session.Get(env.ServerURL() + "/posts")
		require.NoError(t, err)
		defer resp.Body.Close()
		var posts []Post
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
		require.NotEmpty(t, posts)
		require.Equal(t, "over the wire", posts[0].Title)
	})

	return c
}

func get(t *framework.T, c *Client, path string) *http.Response {
	resp, err := c.Get(path)
	require.NoError(t, err)
	return resp
}

func post(t *framework.T, c *Client, path string, body any) *http.Response {
	resp, err := c.Post(path, body)
	require.NoError(t, err)
	return resp
}

func put(t *framework.T, c *Client, path string, body any) *http.Response {
	resp, err := c.Put(path, body)
	require.NoError(t, err)
	return resp
}

func del(t *framework.T, c *Client, path string) *http.Response {
	resp, err := c.Delete(path)
	require.NoError(t, err)
	return resp
}

func decode(t *framework.T, resp *http.Response, dest any) {
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func postJSON(t *framework.T, client *http.Client, url string, body any, wantStatus int) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)
}
