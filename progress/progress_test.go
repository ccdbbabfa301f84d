package progress_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trialforge/crtpower/progress"
)

// TestSlog_Lifecycle drives a reporter through a full run and checks the
// structured records carry the run id and counts.
func TestSlog_Lifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := progress.NewSlog(logger)

	r.Start("run-abc", 500)
	r.Step(1, 10*time.Second)
	r.Step(100, 8*time.Second)
	r.Done(498, 2, 12*time.Second)

	out := buf.String()
	require.Contains(t, out, "simulation started")
	require.Contains(t, out, "run_id=run-abc")
	require.Contains(t, out, "replicates=500")
	require.Contains(t, out, "first replicate complete")
	require.Contains(t, out, "done=100")
	require.Contains(t, out, "simulation finished")
	require.Contains(t, out, "completed=498")
	require.Contains(t, out, "failed=2")
}

// TestNewSlog_NilLogger verifies the nil-logger fallback does not panic.
func TestNewSlog_NilLogger(t *testing.T) {
	r := progress.NewSlog(nil)
	require.NotNil(t, r)
}

// TestNop_Silent verifies the no-op reporter satisfies the interface and
// does nothing observable.
func TestNop_Silent(t *testing.T) {
	var r progress.Reporter = progress.Nop{}
	r.Start("x", 1)
	r.Step(1, 0)
	r.Done(1, 0, 0)
}
