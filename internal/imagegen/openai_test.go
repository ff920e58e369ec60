package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"` + base64.StdEncoding.EncodeToString([]byte("png-bytes")) + `"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1/", "sk-test", 5*time.Second)
	img, err := c.Generate(context.Background(), "a red fox")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), img)
	assert.Equal(t, "dall-e-3", got.Model)
	assert.Equal(t, "a red fox", got.Prompt)
	assert.Equal(t, 1, got.N)
	assert.Equal(t, "b64_json", got.ResponseFormat)
}

func TestGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"content policy"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk-test", time.Second).Generate(context.Background(), "x")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "content policy")
}

func TestGenerateNotConfigured(t *testing.T) {
	_, err := NewClient("http://unused", "", time.Second).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
