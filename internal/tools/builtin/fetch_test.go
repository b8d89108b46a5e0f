package builtin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/conductor/pkg/retry"
)

func fastRetry() *retry.Config {
	return &retry.Config{
		MaxRetries:    1,
		BackoffFactor: 1.0,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		Jitter:        0,
	}
}

func TestFetch_FetchURL(t *testing.T) {
	tests := []struct {
		name         string
		args         map[string]any
		handler      http.HandlerFunc
		wantErr      bool
		wantContains string
	}{
		{
			name: "successful HTML fetch",
			args: map[string]any{"url": "REPLACE_URL"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				fmt.Fprint(w, `<html><body><h1>Test Page</h1><p>Hello World</p></body></html>`)
			},
			wantContains: "Test Page",
		},
		{
			name: "successful JSON fetch",
			args: map[string]any{"url": "REPLACE_URL"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"message": "Hello JSON"}`)
			},
			wantContains: "Hello JSON",
		},
		{
			name: "server error",
			args: map[string]any{"url": "REPLACE_URL"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantErr: true,
		},
		{
			name:    "missing url",
			args:    map[string]any{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetchWithTimeout(5*time.Second, fastRetry())

			if tt.handler != nil {
				srv := httptest.NewServer(tt.handler)
				defer srv.Close()
				if tt.args["url"] == "REPLACE_URL" {
					tt.args["url"] = srv.URL
				}
			}

			got, err := f.fetchURL(context.Background(), tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantContains)
		})
	}
}

func TestClock_GetTime(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewClockAt(func() time.Time { return fixed })

	got, err := c.getTime(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "12:00", got)

	got, err = c.getTime(context.Background(), map[string]any{"format": "2006-01-02"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got)

	_, err = c.getTime(context.Background(), map[string]any{"timezone": "Not/AZone"})
	assert.Error(t, err)
}

func TestNavigator_RequiresTarget(t *testing.T) {
	var gotTarget string
	n := NewNavigator(NavigationSinkFunc(func(ctx context.Context, target string) error {
		gotTarget = target
		return nil
	}))

	got, err := n.navigate(context.Background(), map[string]any{"target": "settings"})
	require.NoError(t, err)
	assert.Equal(t, "Navigating to settings", got)
	assert.Equal(t, "settings", gotTarget)

	_, err = n.navigate(context.Background(), map[string]any{})
	assert.Error(t, err)
}
