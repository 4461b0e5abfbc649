package utilities

import (
	"sync"
	"time"

	"github.com/antonio-alexander/go-hr-service/internal/data"
)

type timer struct {
	start time.Time
	stop  time.Time
}

type timers struct {
	sync.Mutex
	timers map[string][]*timer
}

// Timers measures how long each operation (group) takes, it's used by the
// service to time individual endpoints
type Timers interface {
	Start(group string) int
	Stop(group string, index int) time.Duration
	ReadAll() *data.Timers
	Clear()
}

func NewTimers() Timers {
	return &timers{
		timers: make(map[string][]*timer),
	}
}

func (t *timers) Clear() {
	t.Lock()
	defer t.Unlock()

	t.timers = make(map[string][]*timer)
}

func (t *timers) Start(group string) int {
	t.Lock()
	defer t.Unlock()

	t.timers[group] = append(t.timers[group], &timer{start: time.Now()})
	return len(t.timers[group]) - 1
}

func (t *timers) Stop(group string, index int) time.Duration {
	t.Lock()
	defer t.Unlock()

	timers, found := t.timers[group]
	if !found || index < 0 || index >= len(timers) {
		return -1
	}
	timers[index].stop = time.Now()
	return timers[index].stop.Sub(timers[index].start)
}

func (t *timers) ReadAll() *data.Timers {
	t.Lock()
	defer t.Unlock()

	totals, averages := make(map[string]int64), make(map[string]int64)
	for group, timers := range t.timers {
		var total time.Duration
		var stopped int64

		for _, timer := range timers {
			if timer.stop.IsZero() {
				continue
			}
			total += timer.stop.Sub(timer.start)
			stopped++
		}
		totals[group] = int64(total)
		if stopped > 0 {
			averages[group] = int64(total) / stopped
		}
	}
	return &data.Timers{
		Totals:   totals,
		Averages: averages,
	}
}
