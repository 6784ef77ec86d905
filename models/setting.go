package models

import "time"

// Setting is one key/value credential row. Values are upserted by key so
// third-party tokens can be rotated without a redeploy.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:varchar(80);uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Well-known setting keys read by the outbound providers.
const (
	SettingWhatsAppToken   = "whatsapp_token"
	SettingWhatsAppPhoneID = "whatsapp_phone_id"
	SettingBapiBaseURL     = "bapi_base_url"
	SettingBapiAPIKey      = "bapi_api_key"
)
