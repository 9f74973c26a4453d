package lookup

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

var criminal = Query{CaseType: "Criminal", CaseNumber: "1234", FilingYear: 2023}

func TestSimulatedClientSuccess(t *testing.T) {
	c := NewSimulatedClient(0, 0, rand.New(rand.NewSource(1)))

	res, err := c.Search(context.Background(), criminal)
	require.NoError(t, err)
	assert.Equal(t, "Criminal 1234/2023", res.CaseNumber)
	assert.Equal(t, "Pending", res.CaseStatus)
	assert.Len(t, res.PDFLinks, 2)
	assert.Len(t, res.Timeline, 3)
}

func TestSimulatedClientAlwaysFails(t *testing.T) {
	c := NewSimulatedClient(0, 1, rand.New(rand.NewSource(1)))

	_, err := c.Search(context.Background(), criminal)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, apperr.MsgNotFound, apperr.UserMessage(err))
}

func TestSimulatedClientFailureRate(t *testing.T) {
	c := NewSimulatedClient(0, 0.2, rand.New(rand.NewSource(42)))

	failures := 0
	for i := 0; i < 2000; i++ {
		if _, err := c.Search(context.Background(), criminal); err != nil {
			failures++
		}
	}
	assert.InDelta(t, 400, failures, 80)
}

func TestSimulatedClientHonoursContext(t *testing.T) {
	c := NewSimulatedClient(time.Hour, 0, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, criminal)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestRemoteClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var q Query
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		w.Header().Set("Content-Type", "application/json")

		switch q.CaseNumber {
		case "404":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success": false, "error": "No records found"}`))
		case "500":
			w.WriteHeader(http.StatusInternalServerError)
		case "junk":
			_, _ = w.Write([]byte(`<html>`))
		default:
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    DemoResult(q),
			})
		}
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL, "test-agent", time.Second, logger.NewNop())

	res, err := c.Search(context.Background(), criminal)
	require.NoError(t, err)
	assert.Equal(t, "Criminal 1234/2023", res.CaseNumber)
	assert.Len(t, res.PDFLinks, 2)

	tests := []struct {
		number string
		kind   apperr.Kind
		msg    string
	}{
		{"404", apperr.KindNotFound, "No records found"},
		{"500", apperr.KindUnavailable, apperr.MsgNetwork},
		{"junk", apperr.KindUnavailable, apperr.MsgNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			q := criminal
			q.CaseNumber = tt.number
			_, err := c.Search(context.Background(), q)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.GetKind(err))
			assert.Equal(t, tt.msg, apperr.UserMessage(err))
		})
	}
}

func TestRemoteClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewRemoteClient(url, "", time.Second, logger.NewNop())
	_, err := c.Search(context.Background(), criminal)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestSearchMany(t *testing.T) {
	var inFlight, maxInFlight int32
	client := ClientFunc(func(_ context.Context, q Query) (*Result, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		if q.CaseNumber == "2" {
			return nil, apperr.NotFound(apperr.MsgNotFound)
		}
		return &Result{CaseNumber: q.Display()}, nil
	})

	queries := []Query{
		{CaseType: "CS", CaseNumber: "1", FilingYear: 2023},
		{CaseType: "CS", CaseNumber: "2", FilingYear: 2023},
		{CaseType: "CS", CaseNumber: "3", FilingYear: 2023},
		{CaseType: "CS", CaseNumber: "4", FilingYear: 2023},
	}

	results := SearchMany(context.Background(), client, queries, 2)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, queries[i], r.Query)
	}
	assert.Error(t, results[1].Err)
	assert.Equal(t, "CS 3/2023", results[2].Result.CaseNumber)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(2))
}

func TestParseDisplay(t *testing.T) {
	q := Query{CaseType: "CRL.M.C", CaseNumber: "12-A/3", FilingYear: 2021}
	got, ok := ParseDisplay(q.Display())
	require.True(t, ok)
	assert.Equal(t, q, got)

	got, ok = ParseDisplay("Writ Petition 77/2020")
	require.True(t, ok)
	assert.Equal(t, "Writ Petition", got.CaseType)

	for _, bad := range []string{"", "Criminal", "Criminal 1234", "Criminal 1234/", "Criminal /2023", "Criminal 1/abc"} {
		_, ok := ParseDisplay(bad)
		assert.False(t, ok, bad)
	}
}
