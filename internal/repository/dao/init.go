package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&Plan{},
		&Qr{},
		&Question{},
		&Item{},
		&StockTransaction{},
		&FormResponse{},
		&FormResponseAnswer{},
		&Wish{},
		&QrPin{},
		&QrBatch{},
		&QrBatchItem{},
		&WishImageExport{},
		&Notification{},
	)
	if err != nil {
		return err
	}

	return MigrateLegacyWishStatuses(db)
}

// legacyWishStatuses maps the retired wish status values onto the current
// ones. Rows written before the rename are rewritten on startup.
var legacyWishStatuses = map[string]string{
	"new":  "pending",
	"seen": "accepted",
	"done": "accepted",
}

func MigrateLegacyWishStatuses(db *gorm.DB) error {
	for from, to := range legacyWishStatuses {
		if err := db.Model(&Wish{}).Where("status = ?", from).Update("status", to).Error; err != nil {
			return err
		}
	}

	return nil
}
