package domain

import "time"

// SystemSetting is a key/value configuration row. Encrypted values are sealed at rest.
type SystemSetting struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"column:key;type:varchar(100);uniqueIndex;not null" json:"key"`
	Value     *string   `gorm:"column:value;type:text" json:"value"`
	Encrypted bool      `gorm:"column:encrypted;not null" json:"encrypted"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
	UpdatedBy *uint64   `gorm:"column:updated_by" json:"updated_by"`
}

func (SystemSetting) TableName() string { return "system_settings" }

// SettingView is a setting as returned to admins (decrypted)
type SettingView struct {
	Key       string    `json:"key"`
	Value     *string   `json:"value"`
	Encrypted bool      `json:"encrypted"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy *uint64   `json:"updated_by"`
}

// PublicSetting is a setting visible without authentication
type PublicSetting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UpsertSettingRequest writes a setting value
type UpsertSettingRequest struct {
	Value     *string `json:"value"`
	Encrypted bool    `json:"encrypted"`
}

// TestSMTPRequest overrides stored SMTP settings for a connection test
type TestSMTPRequest struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Secure *bool  `json:"secure"`
	User   string `json:"user"`
	Pass   string `json:"pass"`
	From   string `json:"from"`
}

// TestWebhookRequest overrides stored webhook settings for a test delivery
type TestWebhookRequest struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}
