package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kpitools/webapps/internal/core/domain"
)

type chanSink struct {
	ch chan *domain.AuditEntry
}

func (s *chanSink) Insert(_ context.Context, entry *domain.AuditEntry) error {
	s.ch <- entry
	return nil
}

func TestAuditWriter_PreservesPerActorOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &chanSink{ch: make(chan *domain.AuditEntry, 16)}
	w := NewAuditWriter(4, sink, zerolog.Nop())
	w.Start(ctx)

	ops := []string{"create", "update", "delete"}
	for _, op := range ops {
		if err := w.Insert(ctx, &domain.AuditEntry{Actor: "alice", Operation: op, Outcome: domain.AuditOK}); err != nil {
			t.Fatalf("insert %s: %v", op, err)
		}
	}

	for _, want := range ops {
		select {
		case got := <-sink.ch:
			if got.Operation != want {
				t.Fatalf("operation = %q, want %q", got.Operation, want)
			}
			if got.Actor != "alice" {
				t.Fatalf("actor = %q", got.Actor)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestAuditWriter_ShardsAreStable(t *testing.T) {
	w := NewAuditWriter(4, nil, zerolog.Nop())

	first := w.shardIndex("alice")
	for i := 0; i < 10; i++ {
		if w.shardIndex("alice") != first {
			t.Fatalf("shard index for the same actor changed")
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("shard index out of range: %d", first)
	}
}
