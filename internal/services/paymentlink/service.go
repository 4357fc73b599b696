// Package paymentlink implements the payment-link lifecycle: creation,
// retrieval with lazy expiry, and charge processing through the PSP
// orchestrator.
package paymentlink

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/services/fee"
	"paylink/internal/services/psp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultLinkTTL = 10 * 24 * time.Hour

type Config struct {
	PublicBaseURL  string
	DefaultPspCode psp.Code
}

type Service struct {
	links        repositories.PaymentLinkRepository
	merchants    repositories.MerchantRepository
	payments     repositories.PaymentRepository
	psps         repositories.PspRepository
	feeEngine    fee.Engine
	orchestrator *psp.Orchestrator
	cfg          Config
}

func NewService(
	links repositories.PaymentLinkRepository,
	merchants repositories.MerchantRepository,
	payments repositories.PaymentRepository,
	psps repositories.PspRepository,
	feeEngine fee.Engine,
	orchestrator *psp.Orchestrator,
	cfg Config,
) *Service {
	return &Service{
		links:        links,
		merchants:    merchants,
		payments:     payments,
		psps:         psps,
		feeEngine:    feeEngine,
		orchestrator: orchestrator,
		cfg:          cfg,
	}
}

func (s *Service) CreateLink(ctx context.Context, cmd CreateLinkCommand) (*LinkView, error) {
	now := time.Now()

	expiresAt := now.Add(defaultLinkTTL)
	if cmd.ExpiresAt != nil {
		expiresAt = *cmd.ExpiresAt
	}
	if expiresAt.Before(now) {
		return nil, ErrExpiryInPast
	}

	merchant, err := s.merchants.FindByID(cmd.MerchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id=%d", ErrMerchantNotFound, cmd.MerchantID)
		}
		return nil, err
	}

	if cmd.RecipientID != nil {
		if _, err := s.merchants.FindRecipientByID(*cmd.RecipientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: id=%d", ErrRecipientNotFound, *cmd.RecipientID)
			}
			return nil, err
		}
	}

	slug, err := s.generateUniqueSlug()
	if err != nil {
		return nil, err
	}

	link := &models.PaymentLink{
		PublicID:    uuid.NewString(),
		Slug:        slug,
		MerchantID:  merchant.ID,
		RecipientID: cmd.RecipientID,
		Amount:      cmd.Amount.Round(2),
		Currency:    strings.ToUpper(cmd.Currency),
		Description: cmd.Description,
		Status:      models.PaymentLinkStatusCreated,
		ExpiresAt:   &expiresAt,
	}
	if err := s.links.Save(link); err != nil {
		return nil, err
	}

	return s.buildView(ctx, link)
}

// GetLink returns the link for a slug, lazily flipping it to EXPIRED.
func (s *Service) GetLink(ctx context.Context, slug string) (*LinkView, error) {
	link, err := s.findBySlug(slug)
	if err != nil {
		return nil, err
	}

	if link.Expired(time.Now()) && link.Status != models.PaymentLinkStatusExpired {
		link.Status = models.PaymentLinkStatusExpired
		if err := s.links.Save(link); err != nil {
			return nil, err
		}
	}

	return s.buildView(ctx, link)
}

func (s *Service) ListLinks(merchantID uint) ([]models.PaymentLink, error) {
	return s.links.FindByMerchant(merchantID)
}

func (s *Service) UpdateLink(ctx context.Context, slug string, cmd UpdateLinkCommand) (*LinkView, error) {
	link, err := s.findBySlug(slug)
	if err != nil {
		return nil, err
	}
	if link.Status != models.PaymentLinkStatusCreated {
		return nil, fmt.Errorf("%w: status=%s", ErrLinkNotPayable, link.Status)
	}

	if cmd.Description != nil {
		link.Description = *cmd.Description
	}
	if cmd.Amount != nil {
		link.Amount = cmd.Amount.Round(2)
	}
	if cmd.ExpiresAt != nil {
		if cmd.ExpiresAt.Before(time.Now()) {
			return nil, ErrExpiryInPast
		}
		link.ExpiresAt = cmd.ExpiresAt
	}

	if err := s.links.Save(link); err != nil {
		return nil, err
	}
	return s.buildView(ctx, link)
}

// DeleteLink soft-deletes a merchant's link by expiring it. A PAID link is an
// accounting record and cannot be deleted.
func (s *Service) DeleteLink(slug string, merchantID uint) error {
	link, err := s.findBySlug(slug)
	if err != nil {
		return err
	}
	if link.MerchantID != merchantID {
		return fmt.Errorf("%w: slug=%s", ErrLinkNotFound, slug)
	}
	if link.Status == models.PaymentLinkStatusPaid {
		return fmt.Errorf("%w: a PAID link cannot be deleted", ErrLinkNotPayable)
	}

	link.Status = models.PaymentLinkStatusExpired
	link.UpdatedAt = time.Now()
	return s.links.Save(link)
}

// TokenizeForCheckout tokenizes a card at the link's preferred provider, so
// the checkout page never has to know which PSP will run the charge. Only a
// payable link may tokenize.
func (s *Service) TokenizeForCheckout(slug string, req psp.TokenizationRequest) (*CheckoutToken, error) {
	link, err := s.findBySlug(slug)
	if err != nil {
		return nil, err
	}

	if link.Expired(time.Now()) && link.Status != models.PaymentLinkStatusExpired {
		link.Status = models.PaymentLinkStatusExpired
		if err := s.links.Save(link); err != nil {
			return nil, err
		}
	}
	if link.Status == models.PaymentLinkStatusPaid || link.Status == models.PaymentLinkStatusExpired {
		return nil, fmt.Errorf("%w: status=%s", ErrLinkNotPayable, link.Status)
	}

	client, err := s.orchestrator.Client(psp.Code(s.resolveHint(link.MerchantID)))
	if err != nil {
		return nil, err
	}

	token, err := client.TokenizeCard(req)
	if err != nil {
		return nil, err
	}

	return &CheckoutToken{PspCode: client.Code(), Token: token}, nil
}

// ProcessPayment charges a card token against the link. A payment record is
// created exactly once per successful orchestration, directly in CAPTURED or
// FAILED; routing exhaustion creates no payment at all.
func (s *Service) ProcessPayment(ctx context.Context, slug, cardToken string) (*ProcessPaymentResult, error) {
	link, err := s.findBySlug(slug)
	if err != nil {
		return nil, err
	}

	if link.Expired(time.Now()) && link.Status != models.PaymentLinkStatusExpired {
		link.Status = models.PaymentLinkStatusExpired
		if err := s.links.Save(link); err != nil {
			return nil, err
		}
	}
	if link.Status == models.PaymentLinkStatusPaid || link.Status == models.PaymentLinkStatusExpired {
		return nil, fmt.Errorf("%w: status=%s", ErrLinkNotPayable, link.Status)
	}

	breakdown, err := s.feeEngine.Compute(ctx, link.MerchantID, link.RecipientID, link.Amount, link.Currency)
	if err != nil {
		return nil, err
	}

	hint := s.resolveHint(link.MerchantID)

	routed, err := s.orchestrator.Route(ctx, cardToken, link.Amount, link.Currency, hint)
	if err != nil {
		return nil, err
	}

	status := models.PaymentStatusFailed
	if routed.Result.Status == psp.ChargeSucceeded {
		status = models.PaymentStatusCaptured
	}

	payment := &models.Payment{
		PaymentLinkID: link.ID,
		MerchantID:    link.MerchantID,
		RecipientID:   link.RecipientID,
		PspCode:       string(routed.PspCode),
		PspReference:  routed.Result.PspChargeID,
		Status:        status,
		Amount:        link.Amount,
		FeeTotal:      breakdown.TotalFees,
		NetAmount:     breakdown.FinalAmount,
		Currency:      link.Currency,
		FailureCode:   routed.Result.FailureCode,
	}

	if status == models.PaymentStatusCaptured {
		if breakdown.ProcessingFee.GreaterThan(decimal.Zero) {
			payment.Fees = append(payment.Fees, models.PaymentFee{
				Type:     models.PaymentFeeTypeProcessing,
				Amount:   breakdown.ProcessingFee,
				Currency: link.Currency,
			})
		}
		if breakdown.FxFee.GreaterThan(decimal.Zero) {
			payment.Fees = append(payment.Fees, models.PaymentFee{
				Type:     models.PaymentFeeTypeFx,
				Amount:   breakdown.FxFee,
				Currency: link.Currency,
			})
		}
	}

	if err := s.payments.Save(payment); err != nil {
		return nil, err
	}

	if status == models.PaymentStatusCaptured {
		link.Status = models.PaymentLinkStatusPaid
		if err := s.links.Save(link); err != nil {
			return nil, err
		}
	}

	log.Printf("payment %d for link=%s via PSP=%s status=%s pspRef=%s",
		payment.ID, link.Slug, routed.PspCode, status, payment.PspReference)

	return &ProcessPaymentResult{
		PaymentID:    payment.ID,
		Status:       status,
		PspCode:      routed.PspCode,
		PspReference: payment.PspReference,
		Amount:       payment.Amount,
		Currency:     payment.Currency,
		FeeBreakdown: breakdown,
	}, nil
}

func (s *Service) findBySlug(slug string) (*models.PaymentLink, error) {
	link, err := s.links.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slug=%s", ErrLinkNotFound, slug)
		}
		return nil, err
	}
	return link, nil
}

func (s *Service) buildView(ctx context.Context, link *models.PaymentLink) (*LinkView, error) {
	breakdown, err := s.feeEngine.Compute(ctx, link.MerchantID, link.RecipientID, link.Amount, link.Currency)
	if err != nil {
		return nil, err
	}

	return &LinkView{
		Link:         link,
		FeeBreakdown: breakdown,
		CheckoutURL:  strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + link.Slug,
		PreferredPsp: psp.Code(s.resolveHint(link.MerchantID)),
	}, nil
}

// resolveHint picks the merchant's routing rule, falling back to the default.
func (s *Service) resolveHint(merchantID uint) string {
	code, err := s.psps.PreferredCodeForMerchant(merchantID)
	if err != nil {
		log.Printf("routing rule lookup for merchant %d failed: %v", merchantID, err)
	}
	if code == "" {
		code = string(s.cfg.DefaultPspCode)
	}
	return code
}

func (s *Service) generateUniqueSlug() (string, error) {
	for {
		candidate := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
		exists, err := s.links.ExistsBySlug(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}
