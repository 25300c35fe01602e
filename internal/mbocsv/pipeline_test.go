package mbocsv

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olyamironova/mbp-reconstructor/internal/core"
)

// Drives a whole session through decoder, engine and encoder and checks
// the output file byte for byte, including the suppressed fifth event.
func TestPipeline_EndToEnd(t *testing.T) {
	const t0 = "2024-01-02T09:00:00.000000000Z"
	const t1 = "2024-01-02T09:30:00.000000001Z"
	const t2 = "2024-01-02T09:30:00.000000002Z"
	const t3 = "2024-01-02T09:30:00.000000003Z"
	const t4 = "2024-01-02T09:30:00.000000004Z"

	input := mboHeader + strings.Join([]string{
		"recv0," + t0 + ",160,2,1108,R,N,,0,0,0,8,0,0,ARL",
		"recv1," + t1 + ",160,2,1108,A,B,5.51,100,0,100,130,165,851012,ARL",
		"recv2," + t2 + ",160,2,1108,A,A,5.59,50,0,101,130,166,851013,ARL",
		"recv3," + t3 + ",160,2,1108,C,B,5.51,100,0,100,130,167,851014,ARL",
		// Cancel of an unknown id: applied as a no-op, snapshot suppressed.
		"recv4," + t4 + ",160,2,1108,C,B,5.51,100,0,999,130,168,851015,ARL",
	}, "\n") + "\n"

	empty9 := strings.Repeat(",,0,0,,0,0", 9)
	wantRows := []string{
		"0," + t0 + "," + t0 + ",10,2,1108,R,N,0,,0,8,0,0" + strings.Repeat(",,0,0,,0,0", 10) + ",ARL,0",
		"1," + t1 + "," + t1 + ",10,2,1108,A,B,0,5.51,100,130,165,851012,5.51,100,1,,0,0" + empty9 + ",ARL,100",
		"2," + t2 + "," + t2 + ",10,2,1108,A,A,0,5.59,50,130,166,851013,5.51,100,1,5.59,50,1" + empty9 + ",ARL,101",
		"3," + t3 + "," + t3 + ",10,2,1108,C,B,0,5.51,100,130,167,851014,,0,0,5.59,50,1" + empty9 + ",ARL,100",
	}

	engine := core.NewEngine(nil, nil, nil, zap.NewNop())
	dec := NewDecoder(strings.NewReader(input))

	var out strings.Builder
	enc := NewEncoder(&out)
	require.NoError(t, enc.WriteHeader())

	events := 0
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		events++
		if snap, emitted := engine.ProcessEvent(context.Background(), ev); emitted {
			require.NoError(t, enc.WriteSnapshot(snap))
		}
	}
	require.NoError(t, enc.Flush())
	require.Equal(t, 5, events)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 1+len(wantRows), "header plus four emitted rows")
	for i, want := range wantRows {
		assert.Equal(t, want, lines[i+1], "row %d", i)
	}

	stats := engine.Stats()
	assert.Equal(t, int64(5), stats.EventsProcessed)
	assert.Equal(t, int64(4), stats.SnapshotsEmitted)
	assert.Equal(t, int64(1), stats.SnapshotsSuppressed)
}
