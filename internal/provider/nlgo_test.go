package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwhale/bookbatch/internal/config"
	"github.com/inkwhale/bookbatch/internal/models"
)

func TestNLGOClient_Search(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/seoji/SearchApi.do", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"TOTAL_COUNT": "2",
			"PAGE_NO": "1",
			"docs": [
				{
					"TITLE": "봄의 정원 1",
					"EA_ISBN": "9791100000001",
					"SET_ISBN": "9791100000100",
					"PUBLISHER": "한빛",
					"PUBLISH_PREDATE": "20260301",
					"REAL_PUBLISH_DATE": ""
				},
				{
					"TITLE": "봄의 정원 2",
					"EA_ISBN": "9791100000002",
					"PUBLISH_PREDATE": "",
					"REAL_PUBLISH_DATE": "20260215"
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewNLGOClient(
		config.SourceConfig{BaseURL: server.URL, APIKey: "cert-123"},
		fastNetwork(),
	)
	require.Equal(t, models.SiteNLGO, client.Site())

	resp, err := client.Search(context.Background(), &SearchRequest{
		Keyword: "한빛",
		From:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Page:    1,
		Size:    100,
	})
	require.NoError(t, err)

	assert.Equal(t, "cert-123", gotQuery["cert_key"])
	assert.Equal(t, "20260201", gotQuery["start_publish_date"])
	assert.Equal(t, "20260331", gotQuery["end_publish_date"])
	assert.Equal(t, "한빛", gotQuery["publisher"])
	assert.Equal(t, "json", gotQuery["result_style"])
	assert.Equal(t, "1", gotQuery["page_no"])
	assert.Equal(t, "100", gotQuery["page_size"])

	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, 1, resp.PageNo)
	require.Len(t, resp.Books, 2)

	first := resp.Books[0]
	assert.Equal(t, "9791100000001", first.ISBN)
	assert.Equal(t, "봄의 정원 1", first.Title)
	require.NotNil(t, first.ScheduledPubDate)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *first.ScheduledPubDate)
	assert.Nil(t, first.ActualPubDate)

	raw := first.Original(models.SiteNLGO)
	require.NotNil(t, raw)
	assert.Equal(t, "9791100000100", raw["set_isbn"])
	assert.Equal(t, "한빛", raw["publisher"])

	second := resp.Books[1]
	assert.Nil(t, second.ScheduledPubDate)
	require.NotNil(t, second.ActualPubDate)
}

func TestNLGOClient_Search_RequiresWindow(t *testing.T) {
	client := NewNLGOClient(config.SourceConfig{BaseURL: "http://unused"}, fastNetwork())

	_, err := client.Search(context.Background(), &SearchRequest{Keyword: "한빛", Page: 1, Size: 10})
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, models.SiteNLGO, reqErr.Site)
}

func TestNLGOClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewNLGOClient(config.SourceConfig{BaseURL: server.URL}, fastNetwork())

	_, err := client.Search(context.Background(), &SearchRequest{
		Keyword: "한빛",
		From:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Page:    1,
		Size:    10,
	})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
}
