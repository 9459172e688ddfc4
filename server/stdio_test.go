package server

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prayag001/NewsNexus/pkg/cache"
	"github.com/prayag001/NewsNexus/pkg/config"
	"github.com/prayag001/NewsNexus/pkg/domain"
	"github.com/prayag001/NewsNexus/pkg/fetchsource"
	"github.com/prayag001/NewsNexus/pkg/metrics"
	"github.com/prayag001/NewsNexus/pkg/qualitygate"
	"github.com/prayag001/NewsNexus/pkg/ratelimit"
	"github.com/prayag001/NewsNexus/pkg/tools"
)

func newTestService(sites []domain.Site) *tools.Service {
	cfg, _ := config.Load()
	c := cache.New(time.Minute, 100)
	limiter := ratelimit.New(1000, time.Minute)
	m := metrics.New(time.Now())
	fetcher := fetchsource.New(nil, 0, 0, 0)
	gate := qualitygate.New(nil)
	return tools.New(cfg, sites, c, limiter, m, fetcher, gate)
}

func runLines(t *testing.T, svc *tools.Service, lines ...string) []map[string]interface{} {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out strings.Builder
	srv := New(svc, in, &out)

	err := srv.Run(context.Background())
	require.NoError(t, err)

	var replies []map[string]interface{}
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		replies = append(replies, m)
	}
	return replies
}

func TestRun_HealthCheckRoundTrips(t *testing.T) {
	svc := newTestService([]domain.Site{{Domain: "example.com"}})
	replies := runLines(t, svc, `{"jsonrpc":"2.0","method":"health_check","id":1}`)

	require.Len(t, replies, 1)
	assert.Equal(t, "2.0", replies[0]["jsonrpc"])
	assert.Nil(t, replies[0]["error"])
	result, ok := replies[0]["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "healthy", result["status"])
}

func TestRun_UnknownMethodReturnsBadInputError(t *testing.T) {
	svc := newTestService(nil)
	replies := runLines(t, svc, `{"jsonrpc":"2.0","method":"does_not_exist","id":"abc"}`)

	require.Len(t, replies, 1)
	errObj, ok := replies[0]["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "bad_input", errObj["code"])
}

func TestRun_MalformedJSONReturnsParseError(t *testing.T) {
	svc := newTestService(nil)
	replies := runLines(t, svc, `not json at all`)

	require.Len(t, replies, 1)
	errObj, ok := replies[0]["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "bad_input", errObj["code"])
}

func TestRun_GetArticlesDispatchesAndReturnsNoMatchError(t *testing.T) {
	svc := newTestService([]domain.Site{{Domain: "example.com"}})
	replies := runLines(t, svc, `{"jsonrpc":"2.0","method":"get_articles","params":{"domain":"unconfigured.example.org"},"id":2}`)

	require.Len(t, replies, 1)
	errObj, ok := replies[0]["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "no_match", errObj["code"])
}

func TestRun_MultipleRequestsEachGetAReply(t *testing.T) {
	svc := newTestService([]domain.Site{{Domain: "example.com"}})
	replies := runLines(t, svc,
		`{"jsonrpc":"2.0","method":"health_check","id":1}`,
		`{"jsonrpc":"2.0","method":"get_metrics","id":2}`,
	)
	require.Len(t, replies, 2)
	assert.EqualValues(t, 1, replies[0]["id"])
	assert.EqualValues(t, 2, replies[1]["id"])
}
