package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/sleepypillowz/thesis/internal/hub"
	"github.com/sleepypillowz/thesis/internal/snapshot"
)

// Publisher turns committed queue mutations into snapshot broadcasts.
// Handlers call Trigger with the affected date after their store call
// returns; a single goroutine rebuilds the snapshot and hands it to the
// hub, so no broadcast work ever happens inside a store transaction.
type Publisher struct {
	builder      *snapshot.Builder
	hub          *hub.Hub
	triggers     chan string
	done         chan struct{}
	buildTimeout time.Duration
}

func NewPublisher(builder *snapshot.Builder, h *hub.Hub, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 16
	}
	return &Publisher{
		builder:      builder,
		hub:          h,
		triggers:     make(chan string, buffer),
		done:         make(chan struct{}),
		buildTimeout: 5 * time.Second,
	}
}

// Trigger never blocks the caller. A dropped trigger is harmless when a
// publish for the same date is already pending: the rebuilt snapshot
// includes the newer state anyway.
func (p *Publisher) Trigger(queueDate string) {
	select {
	case p.triggers <- queueDate:
	default:
		log.Printf("broadcast trigger dropped date=%s", queueDate)
	}
}

func (p *Publisher) Run() {
	for {
		select {
		case queueDate := <-p.triggers:
			p.publish(queueDate)
		case <-p.done:
			return
		}
	}
}

func (p *Publisher) Close() {
	close(p.done)
}

// publish coalesces a burst of triggers into one rebuild per date.
func (p *Publisher) publish(queueDate string) {
	dates := []string{queueDate}
drain:
	for {
		select {
		case next := <-p.triggers:
			seen := false
			for _, date := range dates {
				if date == next {
					seen = true
					break
				}
			}
			if !seen {
				dates = append(dates, next)
			}
		default:
			break drain
		}
	}
	for _, date := range dates {
		p.publishOne(date)
	}
}

func (p *Publisher) publishOne(queueDate string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.buildTimeout)
	snap, err := p.builder.Build(ctx, queueDate)
	cancel()
	if err != nil {
		log.Printf("snapshot build error date=%s: %v", queueDate, err)
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("snapshot encode error date=%s: %v", queueDate, err)
		return
	}
	p.hub.Publish(payload)
}
