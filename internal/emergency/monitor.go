package emergency

import (
	"context"
	"log"
	"time"
)

// Default monitoring cadence. Overridable for tests.
const (
	defaultUpdateInterval = 30 * time.Second
	defaultMaxUpdates     = 4
)

var monitorUpdates = []string{
	"The ambulance is en route to your location.",
	"The ambulance is getting closer. Keep your phone nearby.",
	"The ambulance should arrive shortly. If you can, have someone watch for it.",
	"The ambulance is arriving. Paramedics will take over from here.",
}

// Monitor pushes a bounded series of status updates to a patient while
// an ambulance is en route.
type Monitor struct {
	interval   time.Duration
	maxUpdates int
}

// NewMonitor creates a monitor with default cadence
func NewMonitor() *Monitor {
	return &Monitor{
		interval:   defaultUpdateInterval,
		maxUpdates: defaultMaxUpdates,
	}
}

// NewMonitorWithCadence creates a monitor with explicit cadence
func NewMonitorWithCadence(interval time.Duration, maxUpdates int) *Monitor {
	return &Monitor{interval: interval, maxUpdates: maxUpdates}
}

// Start launches a goroutine that calls send for each update until the
// series is exhausted or the context is cancelled. The returned channel
// closes when monitoring ends.
func (m *Monitor) Start(ctx context.Context, conversationID string, send func(update string) error) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for i := 0; i < m.maxUpdates; i++ {
			select {
			case <-ctx.Done():
				log.Printf("Emergency monitoring stopped for conversation %s: %v", conversationID, ctx.Err())
				return
			case <-ticker.C:
				update := monitorUpdates[i%len(monitorUpdates)]
				if err := send(update); err != nil {
					log.Printf("Emergency update delivery failed for conversation %s: %v", conversationID, err)
					return
				}
			}
		}
		log.Printf("Emergency monitoring complete for conversation %s", conversationID)
	}()

	return done
}
