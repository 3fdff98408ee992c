package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/metrics"
	"github.com/Dequr01/fair-ticket/internal/repository"
	"github.com/Dequr01/fair-ticket/pkg/kafka"
	"github.com/Dequr01/fair-ticket/pkg/logger"
)

// IndexerWorker consumes the facts topic and mirrors each fact into the
// queryable Postgres index. Facts are applied idempotently, so a
// rebalance or redelivery after a crash replays harmlessly.
type IndexerWorker struct {
	consumer *kafka.Consumer
	index    repository.IndexRepository
	log      *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewIndexerWorker creates a new indexer worker
func NewIndexerWorker(consumer *kafka.Consumer, index repository.IndexRepository) *IndexerWorker {
	return &IndexerWorker{
		consumer: consumer,
		index:    index,
		log:      logger.Get(),
		stopCh:   make(chan struct{}),
	}
}

// Start starts the indexer worker
func (w *IndexerWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("indexer worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting indexer worker")

	w.wg.Add(1)
	go w.consumeLoop(ctx)

	return nil
}

// Stop stops the indexer worker and waits for the poll loop to drain.
func (w *IndexerWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping indexer worker")
	close(w.stopCh)
	w.wg.Wait()
}

func (w *IndexerWorker) consumeLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := w.consumer.Poll(ctx, w.handleRecord); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("Failed to poll facts topic", zap.Error(err))
		}
	}
}

// handleRecord applies a single fact. A malformed record is logged and
// skipped; it would fail identically on every redelivery.
func (w *IndexerWorker) handleRecord(ctx context.Context, key, value []byte) error {
	var fact domain.Fact
	if err := json.Unmarshal(value, &fact); err != nil {
		w.log.Warn("Skipping malformed fact",
			zap.String("key", string(key)),
			zap.Error(err),
		)
		metrics.RecordFactIndexed(ctx, "malformed", true)
		return nil
	}

	applied, err := w.index.ApplyFact(ctx, &fact)
	if err != nil {
		w.log.Error("Failed to apply fact",
			zap.String("fact_id", fact.ID),
			zap.String("fact_type", string(fact.Type)),
			zap.Error(err),
		)
		return err
	}
	if !applied {
		w.log.Debug("Skipped replayed fact", zap.String("fact_id", fact.ID))
		metrics.RecordFactIndexed(ctx, string(fact.Type), true)
		return nil
	}

	metrics.RecordFactIndexed(ctx, string(fact.Type), false)
	w.log.Debug("Applied fact",
		zap.String("fact_id", fact.ID),
		zap.String("fact_type", string(fact.Type)),
	)
	return nil
}
