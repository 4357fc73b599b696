package psp

import (
	"log"
	"sync"
	"time"
)

// ChargeEvent is a charge-outcome notification flowing from a PSP client to
// the webhook reconciler.
type ChargeEvent struct {
	PspCode        Code
	EventType      string
	PspChargeID    string
	PaymentID      string
	FailureCode    string
	FailureMessage string
	OccurredAt     time.Time
}

const (
	EventChargeSucceeded = "CHARGE_SUCCEEDED"
	EventChargeFailed    = "CHARGE_FAILED"
)

// EventBus is a channel-backed Publisher. PSP clients enqueue events and a
// single consumer goroutine delivers them in order, so the mock clients never
// call back into the reconciliation path directly.
type EventBus struct {
	events    chan ChargeEvent
	closeOnce sync.Once
	done      chan struct{}
}

func NewEventBus(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventBus{
		events: make(chan ChargeEvent, buffer),
		done:   make(chan struct{}),
	}
}

func (b *EventBus) PublishChargeSucceeded(code Code, pspChargeID, paymentID string) {
	b.enqueue(ChargeEvent{
		PspCode:     code,
		EventType:   EventChargeSucceeded,
		PspChargeID: pspChargeID,
		PaymentID:   paymentID,
		OccurredAt:  time.Now(),
	})
}

func (b *EventBus) PublishChargeFailed(code Code, pspChargeID, paymentID, failureCode, failureMessage string) {
	b.enqueue(ChargeEvent{
		PspCode:        code,
		EventType:      EventChargeFailed,
		PspChargeID:    pspChargeID,
		PaymentID:      paymentID,
		FailureCode:    failureCode,
		FailureMessage: failureMessage,
		OccurredAt:     time.Now(),
	})
}

func (b *EventBus) enqueue(ev ChargeEvent) {
	select {
	case b.events <- ev:
	case <-b.done:
		log.Printf("event bus closed, dropping %s for pspChargeId=%s", ev.EventType, ev.PspChargeID)
	}
}

// Run consumes events until Close is called, invoking handler for each.
// It blocks and is meant to run in its own goroutine.
func (b *EventBus) Run(handler func(ChargeEvent)) {
	for {
		select {
		case ev := <-b.events:
			handler(ev)
		case <-b.done:
			// Drain whatever was queued before shutdown.
			for {
				select {
				case ev := <-b.events:
					handler(ev)
				default:
					return
				}
			}
		}
	}
}

func (b *EventBus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}
