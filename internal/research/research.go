// Package research implements the optional per-result enrichment fan-out
// described in SPEC_FULL.md §12 (grounded on
// original_source/backend/backend/logic/researcher.py): parallel across
// result ids, independent per-task timeout, errors become per-result
// strings rather than request-wide failures.
package research

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/driftwell/discoveryengine/internal/safe"
)

// Researcher performs external enrichment lookups for a single company id.
// The default in this environment is NoOp: no external network dependency
// is assumed to exist, and httpapi.Handler falls back to NoOp when no
// Researcher is set (cmd/server sets none).
type Researcher interface {
	Research(ctx context.Context, companyID int64, companyName string) (string, error)
}

// NoOp is a Researcher that performs no lookups.
type NoOp struct{}

// Research implements Researcher by reporting the feature is disabled.
func (NoOp) Research(ctx context.Context, companyID int64, companyName string) (string, error) {
	return "", fmt.Errorf("research: disabled")
}

// Task identifies one result to enrich.
type Task struct {
	CompanyID   int64
	CompanyName string
}

// RunAll fans out Research calls across tasks, one independently-timed
// goroutine per task, panic-recovered (spec §5). A task's error — including
// a panic — becomes its own string result rather than failing the batch.
func RunAll(ctx context.Context, r Researcher, tasks []Task, perTaskTimeout time.Duration) map[int64]string {
	out := make(map[int64]string, len(tasks))
	if len(tasks) == 0 {
		return out
	}

	type result struct {
		id   int64
		text string
	}
	results := make(chan result, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			taskCtx, cancel := context.WithTimeout(gctx, perTaskTimeout)
			defer cancel()

			textCh := make(chan string, 1)
			safe.Go(func() {
				v, err := r.Research(taskCtx, task.CompanyID, task.CompanyName)
				if err != nil {
					textCh <- fmt.Sprintf("research unavailable: %v", err)
					return
				}
				textCh <- v
			}, func(err error) {
				textCh <- fmt.Sprintf("research failed: %v", err)
			})

			text := "research timed out"
			select {
			case text = <-textCh:
			case <-taskCtx.Done():
			}
			results <- result{id: task.CompanyID, text: text}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	for r := range results {
		out[r.id] = r.text
	}
	return out
}
