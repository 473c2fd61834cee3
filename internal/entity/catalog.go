package entity

import "time"

// MainCatalogID is the id of the single catalog document.
const MainCatalogID = "main"

type Catalog struct {
	ID                 string `gorm:"primarykey"`
	PrizePoolText      string `gorm:"type:text"`
	TargetedPrizesText string `gorm:"type:text"`
	RemoveAfterWin     bool
	Version            uint64
	UpdatedAt          time.Time
}
