package event

import (
	"time"
)

// LoginEvent is a raw inbound authentication event. Immutable once received.
type LoginEvent struct {
	UserID           string    `json:"user_id"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
	WebGLHash        string    `json:"webgl_hash"`
	CanvasHash       string    `json:"canvas_hash"`
	Timezone         string    `json:"timezone"`
	ScreenResolution string    `json:"screen_resolution"`
	LoginTimestamp   time.Time `json:"login_timestamp"`
	TypingLatencies  []float64 `json:"typing_latency_array"`
}

// WithDefaults fills the optional fields the same way the intake API does.
func (e LoginEvent) WithDefaults(now time.Time) LoginEvent {
	if e.Timezone == "" {
		e.Timezone = "UTC+0"
	}
	if e.ScreenResolution == "" {
		e.ScreenResolution = "1920x1080"
	}
	if e.LoginTimestamp.IsZero() {
		e.LoginTimestamp = now
	}
	return e
}

// Record is the scored event attached to the audit trail. Never mutated
// after creation.
type Record struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
	WebGLHash        string    `json:"webgl_hash"`
	CanvasHash       string    `json:"canvas_hash"`
	ScreenResolution string    `json:"screen_resolution"`
	Timezone         string    `json:"timezone"`
	LoginTimestamp   time.Time `json:"login_timestamp"`

	BehaviorHash  string  `json:"behavior_hash"`
	EntropyScore  float64 `json:"entropy_score"`
	IPEntropy     float64 `json:"ip_entropy"`
	DeviceEntropy float64 `json:"device_entropy"`

	RiskScore       float64 `json:"risk_score"`
	IsSuspicious    bool    `json:"is_suspicious"`
	AnomalyScore    float64 `json:"anomaly_score"`
	SimilarityScore float64 `json:"similarity_score"`
	ClusterDensity  float64 `json:"cluster_density"`
	Flagged         bool    `json:"flagged"`

	CreatedAt time.Time `json:"created_at"`
}
