package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})

	if got := timeouts.Short(); got != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", got, timeouts.DefaultMedium)
	}
}

func TestReset(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: time.Millisecond, Batch: time.Hour})
	timeouts.Reset()

	cur := timeouts.Current()
	if cur.Ping != timeouts.DefaultPing || cur.Batch != timeouts.DefaultBatch {
		t.Errorf("Current() after Reset = %+v", cur)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, nil, "test")
	<-ctx.Done()
	cancel()

	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
