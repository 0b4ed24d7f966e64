package model

import "time"

// RewardOrigin names what produced a reward notification.
type RewardOrigin string

const (
	OriginManual   RewardOrigin = "MANUAL"
	OriginAngel    RewardOrigin = "ANGEL"
	OriginVC       RewardOrigin = "VC"
	OriginWindfall RewardOrigin = "WINDFALL"
)

// OriginForKind maps a bonus kind to its reward origin.
func OriginForKind(k BonusKind) RewardOrigin {
	return RewardOrigin(k)
}

// RewardNotice is a discrete, ephemeral notification of granted currency.
type RewardNotice struct {
	Amount float64      `json:"amount"`
	Origin RewardOrigin `json:"origin"`
	Text   string       `json:"text"`
}

// State is the read-only snapshot pushed to the presentation layer.
type State struct {
	Balance           float64          `json:"balance"`
	LifetimeEarnings  float64          `json:"lifetime_earnings"`
	AutoIncomeRate    float64          `json:"auto_income_rate"`
	OwnedAssets       []OwnedAsset     `json:"owned_assets"`
	ActiveBonusEvents []BonusEvent     `json:"active_bonus_events"`
	MultiplierWindow  MultiplierWindow `json:"multiplier_window"`
	AdShowing         bool             `json:"ad_showing"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
