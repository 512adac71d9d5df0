package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHeaders(t *testing.T) {
	api := NewClient(&http.Client{})
	api.SetHeader("Potato", "sausage")
	assert.Equal(t, "sausage", api.headers["Potato"])
	api.RemoveHeader("Potato")
	_, found := api.headers["Potato"]
	assert.False(t, found)
}

func TestSetUserPass(t *testing.T) {
	api := NewClient(&http.Client{})
	api.SetUserPass("user", "pass")
	assert.Equal(t, "Basic dXNlcjpwYXNz", api.headers["Authorization"])
}

func TestSetCookie(t *testing.T) {
	api := NewClient(&http.Client{})
	api.SetCookie(&http.Cookie{Name: "a", Value: "1"}, &http.Cookie{Name: "b", Value: "2"})
	assert.Equal(t, "a=1; b=2", api.headers["Cookie"])
}

func TestCall(t *testing.T) {
	var gotRawQuery, gotRange, gotAuth, gotStarHeader string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/path", r.URL.Path)
		gotRawQuery = r.URL.RawQuery
		gotRange = r.Header.Get("Content-Range")
		gotAuth = r.Header.Get("Authorization")
		gotStarHeader = r.Header.Get("lower-case")
		fmt.Fprint(w, "hello")
	}))
	defer ts.Close()

	api := NewClient(&http.Client{}).SetRoot(ts.URL)
	opts := Opts{
		Method:       "GET",
		Path:         "/path",
		UserName:     "user",
		Password:     "pass",
		ContentRange: "bytes 0-4/5",
		ExtraHeaders: map[string]string{"*lower-case": "42"},
		Parameters:   url.Values{"apple": {"cr isp"}, "q": {"a=b&c"}},
	}
	resp, err := api.Call(context.Background(), &opts)
	require.NoError(t, err)
	body, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	assert.Equal(t, "apple=cr%20isp&q=a%3Db%26c", gotRawQuery)
	assert.Equal(t, "bytes 0-4/5", gotRange)
	assert.Equal(t, "Basic dXNlcjpwYXNz", gotAuth)
	assert.Equal(t, "42", gotStarHeader)
}

func TestCallNoRootURL(t *testing.T) {
	api := NewClient(&http.Client{})
	_, err := api.Call(context.Background(), &Opts{Method: "GET"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RootURL not set")
	_, err = api.Call(context.Background(), nil)
	require.Error(t, err)
}

func TestCallErrorHandler(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "not found")
	}))
	defer ts.Close()

	api := NewClient(&http.Client{}).SetRoot(ts.URL)
	_, err := api.Call(context.Background(), &Opts{Method: "GET"})
	require.Error(t, err)
	assert.EqualError(t, err, `HTTP error 404 (404 Not Found) returned body: "not found"`)

	// A custom error handler should take over
	api.SetErrorHandler(func(resp *http.Response) error {
		defer func() { _ = resp.Body.Close() }()
		return errors.Errorf("status %d", resp.StatusCode)
	})
	_, err = api.Call(context.Background(), &Opts{Method: "GET"})
	require.Error(t, err)
	assert.EqualError(t, err, "status 404")

	// IgnoreStatus should suppress the check entirely
	resp, err := api.Call(context.Background(), &Opts{Method: "GET", IgnoreStatus: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestCallNoResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ignored")
	}))
	defer ts.Close()

	api := NewClient(&http.Client{}).SetRoot(ts.URL)
	resp, err := api.Call(context.Background(), &Opts{Method: "GET", NoResponse: true})
	require.NoError(t, err)
	// the body has been closed already so a read should fail
	var buf [1]byte
	_, err = resp.Body.Read(buf[:])
	assert.Error(t, err)
}

func TestCallNoRedirect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/target" {
			http.Redirect(w, r, "/target", http.StatusFound)
			return
		}
		fmt.Fprint(w, "arrived")
	}))
	defer ts.Close()

	api := NewClient(&http.Client{}).SetRoot(ts.URL)

	// Following redirects is the default
	resp, err := api.Call(context.Background(), &Opts{Method: "GET"})
	require.NoError(t, err)
	body, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "arrived", string(body))

	// With NoRedirect we should see the 302 itself
	resp, err = api.Call(context.Background(), &Opts{Method: "GET", NoRedirect: true, IgnoreStatus: true})
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/target", resp.Header.Get("Location"))
}

func TestCallSigner(t *testing.T) {
	var gotSignature string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Signature")
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	api := NewClient(&http.Client{}).SetRoot(ts.URL)
	api.SetSigner(func(req *http.Request) error {
		req.Header.Set("X-Signature", "sausage")
		return nil
	})
	resp, err := api.Call(context.Background(), &Opts{Method: "GET"})
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "sausage", gotSignature)

	api.SetSigner(func(req *http.Request) error {
		return errors.New("no pen")
	})
	_, err = api.Call(context.Background(), &Opts{Method: "GET"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signer failed")
}

type helloRequest struct {
	Name string `json:"name" xml:"Name"`
}

type helloResponse struct {
	Greeting string `json:"greeting" xml:"Greeting"`
}

func TestCallJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := ioutil.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"name":"potato"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"greeting":"hello potato"}`)
	}))
	defer ts.Close()

	api := NewClient(&http.Client{}).SetRoot(ts.URL)
	request := helloRequest{Name: "potato"}
	var response helloResponse
	_, err := api.CallJSON(context.Background(), &Opts{Method: "POST"}, &request, &response)
	require.NoError(t, err)
	assert.Equal(t, "hello potato", response.Greeting)
}

func TestCallXML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		body, err := ioutil.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `<helloRequest><Name>potato</Name></helloRequest>`, string(body))
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<helloResponse><Greeting>hello potato</Greeting></helloResponse>`)
	}))
	defer ts.Close()

	api := NewClient(&http.Client{}).SetRoot(ts.URL)
	request := helloRequest{Name: "potato"}
	var response helloResponse
	_, err := api.CallXML(context.Background(), &Opts{Method: "POST"}, &request, &response)
	require.NoError(t, err)
	assert.Equal(t, "hello potato", response.Greeting)
}

func TestCallJSONMultipart(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "rutabaga", r.FormValue("extra"))
		assert.Equal(t, `{"name":"potato"}`, r.FormValue("metadata"))
		f, fh, err := r.FormFile("content")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		data, err := ioutil.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "file bytes", string(data))
		assert.Equal(t, "upload.bin", fh.Filename)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"greeting":"uploaded"}`)
	}))
	defer ts.Close()

	api := NewClient(&http.Client{}).SetRoot(ts.URL)
	opts := Opts{
		Method:                "POST",
		Body:                  strings.NewReader("file bytes"),
		MultipartParams:       url.Values{"extra": {"rutabaga"}},
		MultipartMetadataName: "metadata",
		MultipartContentName:  "content",
		MultipartFileName:     "upload.bin",
	}
	request := helloRequest{Name: "potato"}
	var response helloResponse
	_, err := api.CallJSON(context.Background(), &opts, &request, &response)
	require.NoError(t, err)
	assert.Equal(t, "uploaded", response.Greeting)
}

func TestMultipartUpload(t *testing.T) {
	in := strings.NewReader("file contents")
	params := url.Values{"potato": {"2"}, "sausage": {"1"}}
	reader, contentType, overhead, err := MultipartUpload(in, params, "file", "file.txt")
	require.NoError(t, err)

	_, mpParams, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	boundary := mpParams["boundary"]
	require.NotEqual(t, "", boundary)

	body, err := ioutil.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, overhead+int64(len("file contents")), int64(len(body)))

	got := map[string]string{}
	var gotFileName string
	mp := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := mp.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := ioutil.ReadAll(part)
		require.NoError(t, err)
		got[part.FormName()] = string(data)
		if part.FileName() != "" {
			gotFileName = part.FileName()
		}
	}
	assert.Equal(t, map[string]string{
		"potato":  "2",
		"sausage": "1",
		"file":    "file contents",
	}, got)
	assert.Equal(t, "file.txt", gotFileName)
}
