package job

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlineRunsTaskSynchronously(t *testing.T) {
	ran := false
	Inline{}.Enqueue(func() { ran = true })
	assert.True(t, ran)
}

func TestInlineWorkersIsOne(t *testing.T) {
	assert.Equal(t, 1, Inline{}.Workers())
}

func TestNewSystemClampsWorkersToEight(t *testing.T) {
	s := NewSystem(100)
	defer s.Close()
	assert.LessOrEqual(t, s.Workers(), 8)
}

func TestNewSystemZeroUsesGOMAXPROCSClamped(t *testing.T) {
	s := NewSystem(0)
	defer s.Close()
	assert.GreaterOrEqual(t, s.Workers(), 1)
	assert.LessOrEqual(t, s.Workers(), 8)
}

func TestSystemEnqueueRunsAllTasksBeforeWaitReturns(t *testing.T) {
	s := NewSystem(4)
	defer s.Close()

	var count int64
	wg := s.NewWaitGroup()
	for i := 0; i < 50; i++ {
		wg.Add(1)
		s.Enqueue(func() {
			atomic.AddInt64(&count, 1)
			wg.Done()
		})
	}
	wg.Wait()
	assert.Equal(t, int64(50), count)
}
