package webhook

import (
	"sync"
	"testing"

	"paylink/internal/models"
	"paylink/internal/services/psp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
	saves    int
}

func newFakePaymentRepo(payments ...*models.Payment) *fakePaymentRepo {
	r := &fakePaymentRepo{payments: make(map[string]*models.Payment)}
	for _, p := range payments {
		r.payments[p.PspReference] = p
	}
	return r
}

func (r *fakePaymentRepo) FindByPspReference(ref string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[ref]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) Save(payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	cp := *payment
	r.payments[payment.PspReference] = &cp
	return nil
}

func (r *fakePaymentRepo) status(ref string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payments[ref].Status
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	saved []*models.PaymentLink
}

func (r *fakeLinkRepo) Save(link *models.PaymentLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, link)
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*models.WebhookEvent
}

func (r *fakeEventRepo) Save(event *models.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func pendingPayment(ref string) *models.Payment {
	return &models.Payment{
		ID:           1,
		PspReference: ref,
		Status:       models.PaymentStatusPending,
		PaymentLink:  models.PaymentLink{ID: 9, Status: models.PaymentLinkStatusCreated},
	}
}

func withStatus(ref, status string) *models.Payment {
	p := pendingPayment(ref)
	p.Status = status
	return p
}

func TestReconciler_SucceededTransitions(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		want       string
		wantSave   bool
		linkToPaid bool
	}{
		{name: "pending is captured", current: models.PaymentStatusPending, want: models.PaymentStatusCaptured, wantSave: true, linkToPaid: true},
		{name: "authorized is captured", current: models.PaymentStatusAuthorized, want: models.PaymentStatusCaptured, wantSave: true, linkToPaid: true},
		{name: "captured is idempotent", current: models.PaymentStatusCaptured, want: models.PaymentStatusCaptured},
		{name: "failed stays failed", current: models.PaymentStatusFailed, want: models.PaymentStatusFailed},
		{name: "refunded stays refunded", current: models.PaymentStatusRefunded, want: models.PaymentStatusRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := newFakePaymentRepo(withStatus("ch_1", tt.current))
			links := &fakeLinkRepo{}
			events := &fakeEventRepo{}
			s := NewService(payments, links, events)

			err := s.HandleChargeSucceeded(psp.CodeStripe, "ch_1", "pay_1")

			require.NoError(t, err)
			assert.Equal(t, tt.want, payments.status("ch_1"))
			assert.Equal(t, 1, events.count(), "every notification is audited")

			if tt.wantSave {
				assert.Equal(t, 1, payments.saves)
			} else {
				assert.Zero(t, payments.saves, "no transition must mean no write")
			}
			if tt.linkToPaid {
				require.Len(t, links.saved, 1)
				assert.Equal(t, models.PaymentLinkStatusPaid, links.saved[0].Status)
			} else {
				assert.Empty(t, links.saved)
			}
		})
	}
}

func TestReconciler_FailedTransitions(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		want     string
		wantSave bool
	}{
		{name: "pending is failed", current: models.PaymentStatusPending, want: models.PaymentStatusFailed, wantSave: true},
		{name: "authorized is failed", current: models.PaymentStatusAuthorized, want: models.PaymentStatusFailed, wantSave: true},
		{name: "failed is idempotent", current: models.PaymentStatusFailed, want: models.PaymentStatusFailed},
		{name: "captured is not un-captured", current: models.PaymentStatusCaptured, want: models.PaymentStatusCaptured},
		{name: "refunded stays refunded", current: models.PaymentStatusRefunded, want: models.PaymentStatusRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := newFakePaymentRepo(withStatus("ch_1", tt.current))
			events := &fakeEventRepo{}
			s := NewService(payments, &fakeLinkRepo{}, events)

			err := s.HandleChargeFailed(psp.CodeAdyen, "ch_1", "pay_1", "CARD_DECLINED", "declined")

			require.NoError(t, err)
			assert.Equal(t, tt.want, payments.status("ch_1"))
			assert.Equal(t, 1, events.count())
			if tt.wantSave {
				assert.Equal(t, 1, payments.saves)
			} else {
				assert.Zero(t, payments.saves)
			}
		})
	}
}

func TestReconciler_DuplicateSucceededIsNoOp(t *testing.T) {
	payments := newFakePaymentRepo(pendingPayment("ch_dup"))
	events := &fakeEventRepo{}
	s := NewService(payments, &fakeLinkRepo{}, events)

	require.NoError(t, s.HandleChargeSucceeded(psp.CodeStripe, "ch_dup", "pay_1"))
	require.NoError(t, s.HandleChargeSucceeded(psp.CodeStripe, "ch_dup", "pay_1"))

	assert.Equal(t, models.PaymentStatusCaptured, payments.status("ch_dup"))
	assert.Equal(t, 1, payments.saves, "second delivery must not write again")
	assert.Equal(t, 2, events.count(), "both deliveries are audited")
}

func TestReconciler_UnknownReferenceAuditsOnly(t *testing.T) {
	payments := newFakePaymentRepo()
	events := &fakeEventRepo{}
	s := NewService(payments, &fakeLinkRepo{}, events)

	err := s.HandleChargeSucceeded(psp.CodeStripe, "ch_unknown", "pay_1")

	require.NoError(t, err, "unknown references are not an error")
	assert.Equal(t, 1, events.count())
	assert.Zero(t, payments.saves)
}

func TestReconciler_AuditPayloadCarriesFailureDetails(t *testing.T) {
	events := &fakeEventRepo{}
	s := NewService(newFakePaymentRepo(), &fakeLinkRepo{}, events)

	require.NoError(t, s.HandleChargeFailed(psp.CodeAdyen, "ch_x", "pay_x", "EXPIRED_CARD", "card expired"))

	require.Equal(t, 1, events.count())
	ev := events.events[0]
	assert.Equal(t, "ADYEN", ev.PspName)
	assert.Equal(t, psp.EventChargeFailed, ev.EventType)
	assert.Contains(t, ev.Payload, "EXPIRED_CARD")
	assert.Contains(t, ev.Payload, "card expired")
}

func TestReconciler_HandleEventDispatch(t *testing.T) {
	payments := newFakePaymentRepo(pendingPayment("ch_ev"))
	s := NewService(payments, &fakeLinkRepo{}, &fakeEventRepo{})

	s.HandleEvent(psp.ChargeEvent{
		PspCode:     psp.CodeStripe,
		EventType:   psp.EventChargeSucceeded,
		PspChargeID: "ch_ev",
	})

	assert.Equal(t, models.PaymentStatusCaptured, payments.status("ch_ev"))
}

func TestReconciler_ConcurrentDeliveriesSerialized(t *testing.T) {
	payments := newFakePaymentRepo(pendingPayment("ch_race"))
	s := NewService(payments, &fakeLinkRepo{}, &fakeEventRepo{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.HandleChargeSucceeded(psp.CodeStripe, "ch_race", "pay_1")
		}()
	}
	wg.Wait()

	assert.Equal(t, models.PaymentStatusCaptured, payments.status("ch_race"))
	assert.Equal(t, 1, payments.saves, "only one delivery may transition the payment")
}
