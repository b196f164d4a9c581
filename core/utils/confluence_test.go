package utils

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opensdd/relnotes/core"
	"github.com/opensdd/relnotes/core/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfluenceGet_Success(t *testing.T) {
	var path, expand, auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		expand = r.URL.Query().Get("expand")
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"123","type":"page","title":"Release notes","version":{"number":7},"body":{"storage":{"value":"<h1>v1</h1>","representation":"storage"}}}`))
	}))
	defer server.Close()

	c := &ConfluenceClient{BaseURL: server.URL + "/", Token: "pat"}
	doc, err := c.Get(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "/rest/api/content/123", path)
	assert.Equal(t, "body.storage,version", expand)
	assert.Equal(t, "Bearer pat", auth)
	assert.Equal(t, section.Document{ID: "123", Title: "Release notes", Version: 7, Body: "<h1>v1</h1>"}, doc)
}

func TestConfluenceGet_EmptyID(t *testing.T) {
	t.Parallel()
	_, err := (&ConfluenceClient{BaseURL: "http://unused"}).Get(context.Background(), " ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDocumentRead))
}

func TestConfluenceGet_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"No content found"}`))
	}))
	defer server.Close()

	_, err := (&ConfluenceClient{BaseURL: server.URL}).Get(context.Background(), "404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDocumentRead))
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "No content found")
}

func TestConfluenceGet_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	_, err := (&ConfluenceClient{BaseURL: server.URL}).Get(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDocumentRead))
}

func TestConfluencePut_Success(t *testing.T) {
	var method, path string
	var payload confluencePage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := &ConfluenceClient{BaseURL: server.URL}
	err := c.Put(context.Background(), "123", section.Document{ID: "123", Title: "Release notes", Version: 8, Body: "<h1>v2</h1>"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/rest/api/content/123", path)
	assert.Equal(t, "123", payload.ID)
	assert.Equal(t, "page", payload.Type)
	assert.Equal(t, "Release notes", payload.Title)
	assert.Equal(t, 8, payload.Version.Number)
	assert.Equal(t, "<h1>v2</h1>", payload.Body.Storage.Value)
	assert.Equal(t, "storage", payload.Body.Storage.Representation)
}

func TestConfluencePut_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Version must be incremented"}`))
	}))
	defer server.Close()

	err := (&ConfluenceClient{BaseURL: server.URL}).Put(context.Background(), "1", section.Document{Version: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDocumentWrite))
	assert.Contains(t, err.Error(), "status 409")
}

func TestConfluencePut_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := (&ConfluenceClient{BaseURL: url}).Put(context.Background(), "1", section.Document{Version: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDocumentWrite))
}
