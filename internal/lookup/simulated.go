package lookup

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/JustJay7/case-lookup/internal/apperr"
)

// SimulatedClient stands in for the court backend in demo mode. Every call
// waits a fixed latency and then fails with the not-found outcome with a
// fixed probability.
type SimulatedClient struct {
	latency     time.Duration
	failureRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedClient creates a simulated client. A nil rnd seeds one from
// the clock.
func NewSimulatedClient(latency time.Duration, failureRate float64, rnd *rand.Rand) *SimulatedClient {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SimulatedClient{
		latency:     latency,
		failureRate: failureRate,
		rnd:         rnd,
	}
}

func (c *SimulatedClient) Search(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()

	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, apperr.Unavailable(ctx.Err()).WithOp("simulated.Search")
		case <-timer.C:
		}
	}

	c.mu.Lock()
	fail := c.rnd.Float64() < c.failureRate
	c.mu.Unlock()

	if fail {
		return nil, apperr.NotFound(apperr.MsgNotFound)
	}

	res := DemoResult(q)
	res.SearchDuration = math.Round(time.Since(start).Seconds()*100) / 100
	return res, nil
}

// DemoResult is the fixed payload returned for any successful demo search.
func DemoResult(q Query) *Result {
	return &Result{
		CaseNumber:      q.Display(),
		PartiesNames:    "Petitioner: State of Delhi\nRespondent: John Doe",
		FilingDate:      "2023-03-15",
		NextHearingDate: "2024-08-25",
		CaseStatus:      "Pending",
		PDFLinks: []Document{
			{URL: "https://example.com/doc1.pdf", Title: "Bail Application"},
			{URL: "https://example.com/doc2.pdf", Title: "Previous Order"},
		},
		Timeline: []TimelineEvent{
			{Date: "2023-03-15", Event: "Case filed"},
			{Date: "2023-05-10", Event: "First hearing"},
			{Date: "2023-07-22", Event: "Evidence submitted"},
		},
	}
}
