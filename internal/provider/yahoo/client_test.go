package yahoo_test

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/guttosm/tickerlens/internal/normalize"
	"github.com/guttosm/tickerlens/internal/provider"
	"github.com/guttosm/tickerlens/internal/provider/mocks"
	"github.com/guttosm/tickerlens/internal/provider/yahoo"
)

const baseURL = "http://yahoo.local"

func ok(body string) *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(body))}
}

func newClient(httpClient provider.HTTPClient) *yahoo.Client {
	return yahoo.NewClient(
		yahoo.WithHTTPClient(httpClient),
		yahoo.WithBaseURL(baseURL),
		yahoo.WithMaxRetries(0),
		yahoo.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
		yahoo.WithClock(func() time.Time { return time.Unix(1704412800, 0) }),
	)
}

func TestSummary_Fetch(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	gomock.InOrder(
		httpClient.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v10/finance/quoteSummary/AAPL", req.URL.Path)
			require.Contains(t, req.URL.Query().Get("modules"), "assetProfile")
			require.NotEmpty(t, req.Header.Get("User-Agent"))
			return ok(`{"quoteSummary":{"result":[{"price":{"symbol":"AAPL","regularMarketPrice":{"raw":185.5}}}],"error":null}}`), nil
		}),
		httpClient.EXPECT().Do(gomock.Any()).DoAndReturn(func(*http.Request) (*http.Response, error) {
			return ok(`{"quoteSummary":{"result":null,"error":{"code":"Not Found"}}}`), nil
		}),
	)

	src := newClient(httpClient).Summary()
	require.Equal(t, normalize.YahooSummary, src.ID())

	payload, err := src.Fetch(t.Context(), "AAPL")
	require.NoError(t, err)
	rec, err := normalize.Normalize(payload, src.ID())
	require.NoError(t, err)
	require.Equal(t, 185.5, rec.Quote.Last.Float64)

	_, err = src.Fetch(t.Context(), "ZZZZ")
	require.ErrorIs(t, err, provider.ErrNotFound)
}

func TestChart_SeriesReshapesColumns(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v8/finance/chart/SPY", req.URL.Path)
			require.Equal(t, "1d", req.URL.Query().Get("interval"))
			require.Equal(t, "1704153600", req.URL.Query().Get("period1"))
			require.Equal(t, "1704412800", req.URL.Query().Get("period2"))
			return ok(`{"chart":{"result":[{
				"timestamp":[1704205800,1704292200,1704378600],
				"indicators":{
					"quote":[{"open":[470,471,null],"high":[473,472,null],"low":[469,468,null],"close":[472,470,null],"volume":[90,100,null]}],
					"adjclose":[{"adjclose":[471.5,469.5,null]}]
				}
			}],"error":null}}`), nil
		}).
		Times(1)

	src := newClient(httpClient).Chart()
	require.Equal(t, normalize.YahooChart, src.ID())

	series, err := src.Series(t.Context(), "SPY", time.Unix(1704153600, 0))
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), series[0].Date)
	require.Equal(t, 471.5, series[0].Close)
	require.Equal(t, 470.0, series[0].Open)
	require.Equal(t, int64(100), series[1].Volume)
}

func TestChart_MissingResult(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).DoAndReturn(func(*http.Request) (*http.Response, error) {
		return ok(`{"chart":{"result":null,"error":{"code":"Not Found"}}}`), nil
	}).Times(1)

	_, err := newClient(httpClient).Chart().Series(t.Context(), "ZZZZ", time.Now())
	require.ErrorIs(t, err, provider.ErrNotFound)
}
