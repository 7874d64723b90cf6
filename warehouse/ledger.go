package warehouse

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrAlreadyLoaded is returned for a clean file whose base name is already
// in the ledger, such as a second copy under another year folder.
var ErrAlreadyLoaded = errors.New("file name already in ledger")

// LedgerTable names the load ledger of category.
func LedgerTable(category string) string {
	return "etl_log_" + category
}

// LoadedFiles returns the file names already recorded in category's ledger.
func LoadedFiles(db *gorm.DB, category string) (map[string]struct{}, error) {
	var names []string
	if err := db.Table(LedgerTable(category)).Pluck("FileName", &names).Error; err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out, nil
}

// IsLoaded reports whether name is in category's ledger.
func IsLoaded(db *gorm.DB, category, name string) (bool, error) {
	var e LedgerEntry
	err := db.Table(LedgerTable(category)).Where("FileName = ?", name).First(&e).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// markLoaded records name inside the load transaction so the ledger row and
// the facts commit together.
func markLoaded(tx *gorm.DB, category, name string, at time.Time) error {
	return tx.Table(LedgerTable(category)).Create(&LedgerEntry{
		FileName:        name,
		LoadedTimestamp: at.Format(time.DateTime),
	}).Error
}
