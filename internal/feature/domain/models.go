package domain

import (
	"context"
	"time"
)

// Flag names form a closed set; writes with any other name are rejected.
const (
	FlagV2Primary        = "v2_primary"
	FlagV2Enabled        = "v2_enabled"
	FlagV1Deprecated     = "v1_deprecated"
	FlagMigrationLogging = "migration_logging"
	FlagShadowMode       = "shadow_mode"
)

// AllFlags lists the closed flag set in a stable order.
var AllFlags = []string{
	FlagV2Primary,
	FlagV2Enabled,
	FlagV1Deprecated,
	FlagMigrationLogging,
	FlagShadowMode,
}

// ValidFlag reports whether name is part of the closed flag set.
func ValidFlag(name string) bool {
	for _, f := range AllFlags {
		if f == name {
			return true
		}
	}
	return false
}

// Migration phases derived from flag combinations.
const (
	Phase1Beta       = "PHASE_1_BETA"
	Phase2BetaShadow = "PHASE_2_BETA_SHADOW"
	Phase3Cutover    = "PHASE_3_CUTOVER"
	Phase4Complete   = "PHASE_4_COMPLETE"
	PhaseUnknown     = "UNKNOWN"
)

// FeatureFlag is the persisted override record for one flag.
type FeatureFlag struct {
	Name      string    `gorm:"column:name;primaryKey" json:"name"`
	Enabled   bool      `gorm:"column:enabled" json:"enabled"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (FeatureFlag) TableName() string {
	return "feature_flags"
}

// MigrationStatus is the observational rollout state reported to operators.
type MigrationStatus struct {
	Phase      string `json:"phase"`
	V1Active   bool   `json:"v1_active"`
	V2Active   bool   `json:"v2_active"`
	ShadowMode bool   `json:"shadow_mode"`
}

// DerivePhase evaluates the phase rules in order; first match wins.
func DerivePhase(flags map[string]bool) string {
	v1Active := !flags[FlagV1Deprecated]
	v2Active := flags[FlagV2Enabled]
	v2Primary := flags[FlagV2Primary]
	shadow := flags[FlagShadowMode]

	switch {
	case !v1Active && v2Active && v2Primary:
		return Phase4Complete
	case v2Primary && v1Active:
		return Phase3Cutover
	case shadow && v1Active:
		return Phase2BetaShadow
	case v2Active && v1Active && !v2Primary:
		return Phase1Beta
	default:
		return PhaseUnknown
	}
}

// Service is the process-scoped flag cache. Reads are served from memory;
// writes update memory first and persist best-effort.
type Service interface {
	IsEnabled(name string) bool
	All() map[string]bool
	Set(ctx context.Context, name string, enabled bool) error
	Status() MigrationStatus
}

// Repository persists flag overrides across restarts.
type Repository interface {
	All(ctx context.Context) ([]FeatureFlag, error)
	Upsert(ctx context.Context, flag *FeatureFlag) error
}
