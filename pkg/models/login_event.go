package models

import (
	"time"
)

// LoginEventRecord is the persisted form of a scored login event.
type LoginEventRecord struct {
	ID               string    `gorm:"primaryKey;type:uuid"`
	UserID           string    `gorm:"index;not null"`
	IPAddress        string    `gorm:"not null"`
	UserAgent        string    `gorm:"type:text"`
	WebGLHash        string    `gorm:"column:webgl_hash"`
	CanvasHash       string    `gorm:"column:canvas_hash"`
	ScreenResolution string    ``
	Timezone         string    ``
	LoginTimestamp   time.Time ``

	BehaviorHash  string  `gorm:"index"`
	EntropyScore  float64 ``
	IPEntropy     float64 `gorm:"column:ip_entropy"`
	DeviceEntropy float64 ``

	RiskScore       float64 `gorm:"index"`
	IsSuspicious    bool    ``
	AnomalyScore    float64 ``
	SimilarityScore float64 ``
	ClusterDensity  float64 ``
	Flagged         bool    `gorm:"index"`

	CreatedAt time.Time `gorm:"index"`
}

func (LoginEventRecord) TableName() string {
	return "login_events"
}

// FreezeActionRecord is one row of the freeze/unfreeze audit log.
type FreezeActionRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"index;not null"`
	Action    string    `gorm:"not null"`
	Reason    string    ``
	RiskScore float64   ``
	ClusterID string    ``
	TxRef     string    ``
	Timestamp time.Time `gorm:"index"`
}

func (FreezeActionRecord) TableName() string {
	return "freeze_log"
}
