package models

import "time"

type Psp struct {
	ID        uint   `gorm:"primarykey"`
	Code      string `gorm:"uniqueIndex;size:16;not null"`
	Name      string
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PspRoutingRule names a merchant's preferred provider. The lowest priority
// active rule becomes the routing hint for that merchant's charges.
type PspRoutingRule struct {
	ID         uint `gorm:"primarykey"`
	MerchantID uint `gorm:"index;not null"`
	PspID      uint `gorm:"not null"`
	Psp        Psp
	Priority   int  `gorm:"default:0"`
	Active     bool `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
