package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmadden91/stratlab/internal/types"
)

func testRequest() Request {
	return Request{
		Symbol:    "NVDA",
		Timeframe: types.TF15Min,
		From:      time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchBarsFollowsPagination(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/stocks/NVDA/bars", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("APCA-API-KEY-ID"))

		calls++
		if r.URL.Query().Get("page_token") == "" {
			fmt.Fprint(w, `{"bars":[{"t":"2025-04-10T13:30:00Z","o":100,"h":101,"l":99,"c":100.5,"v":1200}],"symbol":"NVDA","next_page_token":"abc"}`)
			return
		}
		fmt.Fprint(w, `{"bars":[{"t":"2025-04-10T13:45:00Z","o":100.5,"h":102,"l":100,"c":101.5,"v":900}],"symbol":"NVDA","next_page_token":null}`)
	}))
	defer server.Close()

	client := NewAlpacaClient("key", "secret", server.URL)
	bars, err := client.FetchBars(context.Background(), testRequest())

	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.True(t, bars[0].Timestamp.Before(bars[1].Timestamp), "bars must stay chronological")
}

func TestFetchBarsErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrTransient},
		{http.StatusBadGateway, ErrTransient},
	}

	for _, tc := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		client := NewAlpacaClient("key", "secret", server.URL)
		_, err := client.FetchBars(context.Background(), testRequest())

		assert.True(t, errors.Is(err, tc.want), "status %d should map to %v, got %v", tc.status, tc.want, err)
		server.Close()
	}
}
