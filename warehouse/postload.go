package warehouse

import "gorm.io/gorm"

// UpdateVehicleTotals sets factAccident.totalVehicles to the number of
// loaded vehicles of each accident and returns the rows touched.
func UpdateVehicleTotals(db *gorm.DB) (int64, error) {
	res := db.Exec(`UPDATE factAccident SET totalVehicles = (
		SELECT COUNT(*) FROM factVehicleAccident
		WHERE factVehicleAccident.idAccident = factAccident.idAccident)`)
	return res.RowsAffected, res.Error
}
