// Command seed provisions a demo merchant with fee configuration, the two
// PSP rows and a routing rule, for local development.
package main

import (
	"log"

	"paylink/internal/config"
	"paylink/internal/models"
	"paylink/internal/repositories"

	"github.com/shopspring/decimal"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	db := repositories.DB

	merchant := models.Merchant{Name: "Demo Merchant", Email: "demo@merchant.test"}
	if err := db.Where(models.Merchant{Email: merchant.Email}).FirstOrCreate(&merchant).Error; err != nil {
		log.Fatalf("failed to seed merchant: %v", err)
	}

	feeConfig := models.MerchantFeeConfig{
		MerchantID:    merchant.ID,
		PercentageFee: decimal.NewFromFloat(0.03),
		FixedFee:      decimal.NewFromFloat(1.00),
		FxMarkupPct:   decimal.NewFromFloat(0.01),
	}
	if err := db.Where(models.MerchantFeeConfig{MerchantID: merchant.ID}).
		Attrs(feeConfig).FirstOrCreate(&feeConfig).Error; err != nil {
		log.Fatalf("failed to seed fee config: %v", err)
	}

	stripe := models.Psp{Code: "STRIPE", Name: "Stripe"}
	adyen := models.Psp{Code: "ADYEN", Name: "Adyen"}
	for _, p := range []*models.Psp{&stripe, &adyen} {
		if err := db.Where(models.Psp{Code: p.Code}).FirstOrCreate(p).Error; err != nil {
			log.Fatalf("failed to seed psp %s: %v", p.Code, err)
		}
	}

	rule := models.PspRoutingRule{MerchantID: merchant.ID, PspID: stripe.ID, Priority: 0, Active: true}
	if err := db.Where(models.PspRoutingRule{MerchantID: merchant.ID}).
		Attrs(rule).FirstOrCreate(&rule).Error; err != nil {
		log.Fatalf("failed to seed routing rule: %v", err)
	}

	log.Printf("seeded merchant id=%d with fee config and routing rule", merchant.ID)
}
