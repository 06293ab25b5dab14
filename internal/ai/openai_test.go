package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOpenAIWithoutKey(t *testing.T) {
	require.Nil(t, NewOpenAI(Config{}))
	require.Nil(t, NewOpenAI(Config{APIKey: "   "}))
}

func TestNewOpenAIDefaultsModel(t *testing.T) {
	c := NewOpenAI(Config{APIKey: "k"})
	require.NotNil(t, c)
	require.Equal(t, DefaultModel, c.Model())
}

func TestComplete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, auth = r.URL.Path, r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  [] \n"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(Config{APIKey: "secret", Model: "test-model", BaseURL: srv.URL + "/"})
	out, err := c.Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)
	require.Equal(t, "[]", out)
	require.Equal(t, "/chat/completions", path)
	require.Equal(t, "Bearer secret", auth)
	require.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Equal(t, "usr", got.Messages[1].Content)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
}
