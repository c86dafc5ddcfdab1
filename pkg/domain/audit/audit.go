package audit

import (
	"context"
	"time"
)

const (
	ActionFreeze   = "freeze"
	ActionUnfreeze = "unfreeze"
)

// FreezeAction is one entry of the freeze/unfreeze audit trail.
type FreezeAction struct {
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	RiskScore float64   `json:"risk_score,omitempty"`
	ClusterID string    `json:"cluster_id,omitempty"`
	TxRef     string    `json:"tx_ref,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Repository records freeze actions. Same degradation contract as the event
// repository: a down store buffers in memory and never blocks a freeze.
type Repository interface {
	LogFreezeAction(ctx context.Context, userID, reason string, riskScore float64, clusterID string) error
	LogUnfreezeAction(ctx context.Context, userID string) error
	FreezeLog(ctx context.Context, limit int) ([]FreezeAction, error)
}
