package command

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics(true)
	m.RecordLoad("extract-dat", 30*time.Millisecond)
	m.RecordRun("extract-dat", 5*time.Millisecond)
	m.RecordRun("extract-dat", 2*time.Millisecond)
	m.RecordRun("extract-dat", 9*time.Millisecond)

	snapshot, err := m.Snapshot("extract-dat")
	require.NoError(t, err)

	assert.EqualValues(t, 1, snapshot.Load.Count.Load())
	assert.EqualValues(t, 30*time.Millisecond, snapshot.Load.TotalTime.Load())
	assert.EqualValues(t, 3, snapshot.Run.Count.Load())
	assert.EqualValues(t, 16*time.Millisecond, snapshot.Run.TotalTime.Load())
	assert.EqualValues(t, 2*time.Millisecond, snapshot.Run.MinTime.Load())
	assert.EqualValues(t, 9*time.Millisecond, snapshot.Run.MaxTime.Load())
}

func TestMetrics_Disabled(t *testing.T) {
	m := NewMetrics(false)
	m.RecordRun("a", time.Second)

	_, err := m.Snapshot("a")
	assert.Error(t, err)

}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics(true)
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.RecordRun("a", time.Duration(i)*time.Microsecond)
		}(i)
	}
	wg.Wait()

	snapshot, err := m.Snapshot("a")
	require.NoError(t, err)
	assert.EqualValues(t, 50, snapshot.Run.Count.Load())
	assert.EqualValues(t, time.Microsecond, snapshot.Run.MinTime.Load())
	assert.EqualValues(t, 50*time.Microsecond, snapshot.Run.MaxTime.Load())
}
