// internal/models/location.go
package models

// Location lookup hierarchy backing the address form. Serial IDs, seeded
// reference data, never written by the application flow.

type Province struct {
	ID   int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:100;not null"`
	Code string `json:"code" gorm:"size:10"`
}

type City struct {
	ID         int    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProvinceID int    `json:"province_id" gorm:"not null;index"`
	Name       string `json:"name" gorm:"size:100;not null"`
	Code       string `json:"code" gorm:"size:10"`
}

type Barangay struct {
	ID      int    `json:"id" gorm:"primaryKey;autoIncrement"`
	CityID  int    `json:"city_id" gorm:"not null;index"`
	Name    string `json:"name" gorm:"size:100;not null"`
	ZipCode string `json:"zip_code" gorm:"size:10"`
}
