package psp

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultChargeTimeout = 10 * time.Second

// Orchestrator routes a charge through a primary provider and fails over to
// the secondary on decline or error. One hop, never more: retries beyond the
// failover are a caller concern.
type Orchestrator struct {
	clients       map[Code]Client
	order         []Code
	chargeTimeout time.Duration
}

type OrchestratorConfig struct {
	// ChargeTimeout bounds each individual provider call.
	ChargeTimeout time.Duration
}

// NewOrchestrator registers the configured clients. Registration order is the
// default routing order when no hint is given.
func NewOrchestrator(clients []Client, cfg OrchestratorConfig) *Orchestrator {
	if len(clients) < 2 {
		panic("orchestrator requires at least two PSP clients")
	}

	timeout := cfg.ChargeTimeout
	if timeout <= 0 {
		timeout = defaultChargeTimeout
	}

	o := &Orchestrator{
		clients:       make(map[Code]Client, len(clients)),
		chargeTimeout: timeout,
	}
	for _, c := range clients {
		if _, dup := o.clients[c.Code()]; dup {
			panic("duplicate PSP client: " + string(c.Code()))
		}
		o.clients[c.Code()] = c
		o.order = append(o.order, c.Code())
	}
	return o
}

// Route executes the failover charge protocol. A hint naming a configured
// provider makes it primary; otherwise the default ordering applies. The two
// attempts are strictly sequential and share nothing but the request value.
func (o *Orchestrator) Route(
	ctx context.Context,
	cardToken string,
	amount decimal.Decimal,
	currency string,
	providerHint string,
) (*RoutedChargeResult, error) {
	primary, secondary := o.resolvePair(providerHint)

	req := ChargeRequest{
		CardToken: cardToken,
		Amount:    amount,
		Currency:  currency,
	}

	// Cancellation is advisory: honored before the first provider call
	// starts, never after. Card charges are not abortable.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Printf("trying primary PSP=%s for amount=%s %s", primary.Code(), amount, currency)

	primaryResult, err := o.attempt(ctx, primary, req)
	if err != nil {
		log.Printf("primary PSP=%s error: %v", primary.Code(), err)
	} else if primaryResult.Status == ChargeSucceeded {
		return &RoutedChargeResult{PspCode: primary.Code(), Result: primaryResult}, nil
	} else {
		log.Printf("primary PSP=%s returned FAILED: failureCode=%s failureMessage=%s",
			primary.Code(), primaryResult.FailureCode, primaryResult.FailureMessage)
	}

	log.Printf("trying secondary PSP=%s for amount=%s %s", secondary.Code(), amount, currency)

	secondaryResult, err := o.attempt(ctx, secondary, req)
	if err != nil {
		log.Printf("secondary PSP=%s also errored: %v", secondary.Code(), err)
		return nil, &RoutingError{
			Primary:   primary.Code(),
			Secondary: secondary.Code(),
			Reason:    err.Error(),
		}
	}
	if secondaryResult.Status == ChargeSucceeded {
		return &RoutedChargeResult{PspCode: secondary.Code(), Result: secondaryResult}, nil
	}

	log.Printf("secondary PSP=%s also FAILED: failureCode=%s failureMessage=%s",
		secondary.Code(), secondaryResult.FailureCode, secondaryResult.FailureMessage)

	return nil, &RoutingError{
		Primary:   primary.Code(),
		Secondary: secondary.Code(),
		Reason: fmt.Sprintf("both providers declined, last failureCode=%s",
			secondaryResult.FailureCode),
	}
}

// attempt runs one provider call bounded by the charge timeout and detached
// from caller cancellation: once a charge is in flight it must complete.
func (o *Orchestrator) attempt(ctx context.Context, client Client, req ChargeRequest) (ChargeResult, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.chargeTimeout)
	defer cancel()
	return client.Charge(callCtx, req)
}

// Client returns the registered client for a code, for callers that need a
// specific provider (checkout tokenization) instead of the failover protocol.
func (o *Orchestrator) Client(code Code) (Client, error) {
	c, ok := o.clients[Code(strings.ToUpper(string(code)))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, code)
	}
	return c, nil
}

func (o *Orchestrator) resolvePair(hint string) (Client, Client) {
	primaryCode := o.order[0]
	if hint != "" {
		if _, ok := o.clients[Code(strings.ToUpper(hint))]; ok {
			primaryCode = Code(strings.ToUpper(hint))
		}
	}

	secondaryCode := o.order[0]
	for _, code := range o.order {
		if code != primaryCode {
			secondaryCode = code
			break
		}
	}

	return o.clients[primaryCode], o.clients[secondaryCode]
}
