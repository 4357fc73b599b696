// Package webhook reconciles asynchronous PSP charge notifications against
// payment state under an idempotent, conflict-resolving state machine.
package webhook

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"paylink/internal/models"
	"paylink/internal/services/psp"
)

// Service applies webhook notifications to payments. Processing for a given
// PSP reference is serialized so the conflict rules stay deterministic under
// concurrent delivery.
type Service struct {
	payments PaymentRepository
	links    PaymentLinkRepository
	events   EventRepository
	locks    sync.Map // psp reference -> *sync.Mutex
}

func NewService(payments PaymentRepository, links PaymentLinkRepository, events EventRepository) *Service {
	return &Service{
		payments: payments,
		links:    links,
		events:   events,
	}
}

// HandleChargeSucceeded reconciles a success notification. Conflicts with
// already-terminal payments are resolved in favor of the stored state and
// only logged; they are never errors.
func (s *Service) HandleChargeSucceeded(pspCode psp.Code, pspChargeID, paymentID string) error {
	log.Printf("[webhook] charge SUCCEEDED: pspCode=%s pspChargeId=%s paymentId=%s",
		pspCode, pspChargeID, paymentID)

	if err := s.audit(pspCode, psp.EventChargeSucceeded, pspChargeID, paymentID, "", ""); err != nil {
		return err
	}

	unlock := s.lock(pspChargeID)
	defer unlock()

	payment, err := s.payments.FindByPspReference(pspChargeID)
	if err != nil {
		return err
	}
	if payment == nil {
		// The payment may not be persisted yet (race) or belongs to another
		// instance; the audit row is all we keep.
		log.Printf("[webhook] no payment for pspChargeId=%s, audit only", pspChargeID)
		return nil
	}

	switch payment.Status {
	case models.PaymentStatusCaptured:
		log.Printf("[webhook] ignoring SUCCEEDED for already CAPTURED payment id=%d pspRef=%s",
			payment.ID, pspChargeID)
		return nil
	case models.PaymentStatusFailed:
		// A provider cannot resurrect a charge already terminalized as
		// failed; treated as an untrusted late event.
		log.Printf("[webhook] conflict: SUCCEEDED for FAILED payment id=%d pspRef=%s, keeping FAILED",
			payment.ID, pspChargeID)
		return nil
	case models.PaymentStatusRefunded:
		log.Printf("[webhook] conflict: SUCCEEDED for REFUNDED payment id=%d pspRef=%s, keeping REFUNDED",
			payment.ID, pspChargeID)
		return nil
	}

	log.Printf("[webhook] marking payment id=%d CAPTURED from status=%s", payment.ID, payment.Status)
	payment.Status = models.PaymentStatusCaptured
	payment.UpdatedAt = time.Now()
	if err := s.payments.Save(payment); err != nil {
		return err
	}

	return s.markLinkPaid(payment)
}

// HandleChargeFailed reconciles a failure notification.
func (s *Service) HandleChargeFailed(pspCode psp.Code, pspChargeID, paymentID, failureCode, failureMessage string) error {
	log.Printf("[webhook] charge FAILED: pspCode=%s pspChargeId=%s paymentId=%s failureCode=%s failureMessage=%s",
		pspCode, pspChargeID, paymentID, failureCode, failureMessage)

	if err := s.audit(pspCode, psp.EventChargeFailed, pspChargeID, paymentID, failureCode, failureMessage); err != nil {
		return err
	}

	unlock := s.lock(pspChargeID)
	defer unlock()

	payment, err := s.payments.FindByPspReference(pspChargeID)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Printf("[webhook] no payment for pspChargeId=%s, audit only", pspChargeID)
		return nil
	}

	switch payment.Status {
	case models.PaymentStatusFailed:
		log.Printf("[webhook] ignoring FAILED for already FAILED payment id=%d pspRef=%s",
			payment.ID, pspChargeID)
		return nil
	case models.PaymentStatusCaptured:
		// Captured funds cannot be un-captured by a failure notice.
		log.Printf("[webhook] conflict: FAILED for CAPTURED payment id=%d pspRef=%s, keeping CAPTURED",
			payment.ID, pspChargeID)
		return nil
	case models.PaymentStatusRefunded:
		log.Printf("[webhook] conflict: FAILED for REFUNDED payment id=%d pspRef=%s, keeping REFUNDED",
			payment.ID, pspChargeID)
		return nil
	}

	log.Printf("[webhook] marking payment id=%d FAILED from status=%s", payment.ID, payment.Status)
	payment.Status = models.PaymentStatusFailed
	payment.FailureCode = failureCode
	payment.UpdatedAt = time.Now()
	return s.payments.Save(payment)
}

// HandleEvent dispatches an internal charge event from the PSP event bus.
func (s *Service) HandleEvent(ev psp.ChargeEvent) {
	var err error
	switch ev.EventType {
	case psp.EventChargeSucceeded:
		err = s.HandleChargeSucceeded(ev.PspCode, ev.PspChargeID, ev.PaymentID)
	case psp.EventChargeFailed:
		err = s.HandleChargeFailed(ev.PspCode, ev.PspChargeID, ev.PaymentID, ev.FailureCode, ev.FailureMessage)
	default:
		log.Printf("[webhook] unknown event type %q for pspChargeId=%s", ev.EventType, ev.PspChargeID)
		return
	}
	if err != nil {
		log.Printf("[webhook] failed to process %s for pspChargeId=%s: %v", ev.EventType, ev.PspChargeID, err)
	}
}

func (s *Service) markLinkPaid(payment *models.Payment) error {
	link := payment.PaymentLink
	if link.ID == 0 || link.Status == models.PaymentLinkStatusPaid {
		return nil
	}
	link.Status = models.PaymentLinkStatusPaid
	link.UpdatedAt = time.Now()
	return s.links.Save(&link)
}

// audit durably appends the notification before any transition is attempted.
func (s *Service) audit(pspCode psp.Code, eventType, pspChargeID, paymentID, failureCode, failureMessage string) error {
	payload, err := json.Marshal(map[string]string{
		"pspChargeId":    pspChargeID,
		"paymentId":      paymentID,
		"failureCode":    failureCode,
		"failureMessage": failureMessage,
	})
	if err != nil {
		return err
	}

	return s.events.Save(&models.WebhookEvent{
		PspName:   string(pspCode),
		EventType: eventType,
		Payload:   string(payload),
		CreatedAt: time.Now(),
	})
}

// lock serializes processing per PSP reference.
func (s *Service) lock(ref string) func() {
	v, _ := s.locks.LoadOrStore(ref, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
