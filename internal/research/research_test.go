package research

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeResearcher struct {
	delay func(id int64) time.Duration
	panic bool
}

func (f fakeResearcher) Research(ctx context.Context, companyID int64, companyName string) (string, error) {
	if f.panic {
		panic("boom")
	}
	if f.delay != nil {
		select {
		case <-time.After(f.delay(companyID)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "enriched:" + companyName, nil
}

func TestRunAll_HappyPath(t *testing.T) {
	tasks := []Task{{CompanyID: 1, CompanyName: "Acme"}, {CompanyID: 2, CompanyName: "Beta"}}
	out := RunAll(context.Background(), fakeResearcher{}, tasks, time.Second)
	assert.Equal(t, "enriched:Acme", out[1])
	assert.Equal(t, "enriched:Beta", out[2])
}

func TestRunAll_PerTaskTimeout(t *testing.T) {
	tasks := []Task{{CompanyID: 1, CompanyName: "Slow"}}
	r := fakeResearcher{delay: func(int64) time.Duration { return 50 * time.Millisecond }}
	out := RunAll(context.Background(), r, tasks, 5*time.Millisecond)
	assert.Equal(t, "research timed out", out[1])
}

func TestRunAll_PanicBecomesPerResultString(t *testing.T) {
	tasks := []Task{{CompanyID: 1, CompanyName: "Crash"}}
	out := RunAll(context.Background(), fakeResearcher{panic: true}, tasks, time.Second)
	assert.Contains(t, out[1], "research failed")
}

func TestRunAll_NoOpReportsDisabled(t *testing.T) {
	tasks := []Task{{CompanyID: 1, CompanyName: "X"}}
	out := RunAll(context.Background(), NoOp{}, tasks, time.Second)
	assert.Contains(t, out[1], "research unavailable")
}

func TestRunAll_Empty(t *testing.T) {
	out := RunAll(context.Background(), NoOp{}, nil, time.Second)
	assert.Empty(t, out)
}
