package metrics

import (
	"context"
	"time"

	"github.com/vanshika/skillgraph/backend/internal/graph"
)

type instrumentedClient struct {
	graph.Client
	metrics *Metrics
}

// InstrumentClient wraps client so every read and write is timed.
func InstrumentClient(client graph.Client, m *Metrics) graph.Client {
	if m == nil {
		return client
	}
	return &instrumentedClient{Client: client, metrics: m}
}

func (c *instrumentedClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (graph.Result, error) {
	start := time.Now()
	res, err := c.Client.ExecuteWrite(ctx, cypher, params)
	c.observe("write", start, err)
	return res, err
}

func (c *instrumentedClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (graph.Result, error) {
	start := time.Now()
	res, err := c.Client.ExecuteRead(ctx, cypher, params)
	c.observe("read", start, err)
	return res, err
}

func (c *instrumentedClient) observe(mode string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.GraphQueries.WithLabelValues(mode, outcome).Observe(time.Since(start).Seconds())
}
