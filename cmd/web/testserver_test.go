package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	url2 "net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/spotfake/internal/errors"
	"github.com/myrjola/spotfake/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{}
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(250 * time.Millisecond)
		}
	}
}

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "SPOTFAKE_ADDR":
		return "localhost:0", true
	case "SPOTFAKE_SQLITE_URL":
		return ":memory:", true
	case "SPOTFAKE_PPROF_PORT":
		return ":0", true
	case "SPOTFAKE_SESSION_SECONDS":
		return "60", true
	default:
		return "", false
	}
}

type testServer struct {
	url    string
	client http.Client
}

// startTestServer starts the test server, waits for it to be ready, and
// returns a client with a cookie jar for driving it.
func startTestServer(t *testing.T, w io.Writer, lookupEnv func(string) (string, bool)) testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == "addr" {
				select {
				case addrCh <- a.Value.String():
				default:
				}
			}
			return a
		},
	})))

	// Start the server and wait for it to be ready.
	go func() {
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()
	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return testServer{}
	case addr := <-addrCh:
		// swap 127.0.0.1 with localhost to make secure cookies work in
		// [cookiejar.Jar]
		port := strings.Split(addr, ":")[1]
		serverURL := fmt.Sprintf("http://localhost:%s", port)
		if err := waitForReady(ctx, fmt.Sprintf("%s/api/healthy", serverURL)); err != nil {
			require.NoError(t, err)
		}
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		return testServer{
			url:    serverURL,
			client: http.Client{Jar: jar},
		}
	}
}

// Get fetches a URL and returns the response.
func (s *testServer) Get(t *testing.T, urlPath string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	return resp
}

// GetDoc fetches a URL and returns a goquery document.
func (s *testServer) GetDoc(t *testing.T, urlPath string) *goquery.Document {
	t.Helper()
	resp := s.Get(t, urlPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

// SubmitForm submits the form with the given action found on the page at
// formURLPath, merged with the given values, and returns the response
// document.
func (s *testServer) SubmitForm(t *testing.T, formURLPath, formActionURLPath string, values url2.Values) *goquery.Document {
	t.Helper()
	doc := s.GetDoc(t, formURLPath)
	return s.SubmitFormOnDoc(t, doc, formActionURLPath, values)
}

// SubmitFormOnDoc submits the form with the given action found on an already
// fetched document.
func (s *testServer) SubmitFormOnDoc(t *testing.T, doc *goquery.Document, formActionURLPath string, values url2.Values) *goquery.Document {
	t.Helper()
	html, err := doc.Html()
	require.NoError(t, err)

	// Extract CSRF token from the form. When several forms share the action,
	// e.g. the two answer buttons, the caller picks between them with values.
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector).First()
	require.Equal(t, 1, form.Length(), "form %s not found in document:\n%s", formSelector, html)
	csrfToken, ok := form.Find("input[name=csrf_token]").Attr("value")
	require.True(t, ok, "csrf_token not found in form %s", formSelector)

	// Build form data
	formData := url2.Values{}
	for key, vals := range values {
		formData[key] = vals
	}
	formData.Set("csrf_token", csrfToken)
	// Carry the form's own hidden inputs so that e.g. answer buttons work.
	form.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name, _ := input.Attr("name")
		value, _ := input.Attr("value")
		if name != "" && name != "csrf_token" && !formData.Has(name) {
			formData.Set(name, value)
		}
	})
	data := strings.NewReader(formData.Encode())

	// Submit the form
	resp, err := s.client.Post(s.url+formActionURLPath, "application/x-www-form-urlencoded", data)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer func(body io.ReadCloser) {
		err = body.Close()
		assert.NoError(t, err)
	}(resp.Body)

	// Parse the response
	doc, err = goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}
