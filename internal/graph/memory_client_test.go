package graph

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryClient_QueuesResponsesInOrder(t *testing.T) {
	mem := NewMemoryClient()
	ctx := context.Background()

	mem.PushWriteResult(Result{Records: []Record{{"n": 1}}})
	mem.PushWriteError(ErrConstraintViolation)

	res, err := mem.ExecuteWrite(ctx, "CREATE (n)", map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}

	if _, err := mem.ExecuteWrite(ctx, "CREATE (n)", nil); !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}

	res, err = mem.ExecuteWrite(ctx, "CREATE (n)", nil)
	if err != nil || len(res.Records) != 0 {
		t.Fatalf("expected empty result once queue drains, got %+v, %v", res, err)
	}

	if got := len(mem.WriteCalls()); got != 3 {
		t.Fatalf("expected 3 recorded writes, got %d", got)
	}
}

func TestMemoryClient_ParamsAreCopied(t *testing.T) {
	mem := NewMemoryClient()
	params := map[string]any{"email": "ann@x.com"}

	if _, err := mem.ExecuteRead(context.Background(), "MATCH (n) RETURN n", params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params["email"] = "changed"

	calls := mem.ReadCalls()
	if calls[0].Params["email"] != "ann@x.com" {
		t.Fatalf("expected recorded params to be isolated, got %v", calls[0].Params["email"])
	}
}

func TestMemoryClient_GlobalError(t *testing.T) {
	boom := errors.New("boom")
	mem := NewMemoryClient().WithError(boom).WithConnectivityError(boom)

	if _, err := mem.ExecuteRead(context.Background(), "RETURN 1", nil); !errors.Is(err, boom) {
		t.Fatalf("expected boom from read, got %v", err)
	}
	if err := mem.VerifyConnectivity(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom from connectivity, got %v", err)
	}
	if err := mem.Close(context.Background()); err != nil || !mem.Closed() {
		t.Fatalf("expected client to close cleanly")
	}
}
