package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Rules holds the economy and timing constants of the machine.
// A YAML file can override any of the defaults.
type Rules struct {
	StartingBalance int64 `mapstructure:"starting_balance" json:"startingBalance"`
	StartingBet     int64 `mapstructure:"starting_bet" json:"startingBet"`
	MinBet          int64 `mapstructure:"min_bet" json:"minBet"`
	MaxBet          int64 `mapstructure:"max_bet" json:"maxBet"`
	PairMultiplier  int64 `mapstructure:"pair_multiplier" json:"pairMultiplier"`
	TransferCap     int64 `mapstructure:"transfer_cap" json:"transferCap"`
	XPPerSpin       int64 `mapstructure:"xp_per_spin" json:"xpPerSpin"`

	DailyBonusPeriod  time.Duration `mapstructure:"daily_bonus_period" json:"dailyBonusPeriod"`
	DailyBonusAmount  int64         `mapstructure:"daily_bonus_amount" json:"dailyBonusAmount"`
	HourlyBonusPeriod time.Duration `mapstructure:"hourly_bonus_period" json:"hourlyBonusPeriod"`
	HourlyBonusAmount int64         `mapstructure:"hourly_bonus_amount" json:"hourlyBonusAmount"`
	BonusHistoryLimit int           `mapstructure:"bonus_history_limit" json:"bonusHistoryLimit"`

	// AutoSpinDelay is the pause between settled auto-spins
	AutoSpinDelay time.Duration `mapstructure:"auto_spin_delay" json:"autoSpinDelay"`
	// SettleDelay is the presentation window between bet and resolution.
	// The economy itself settles atomically; this only paces the facade.
	SettleDelay time.Duration `mapstructure:"settle_delay" json:"settleDelay"`
}

// DefaultRules returns the standard rule set
func DefaultRules() Rules {
	return Rules{
		StartingBalance:   100,
		StartingBet:       5,
		MinBet:            1,
		MaxBet:            50,
		PairMultiplier:    2,
		TransferCap:       1000,
		XPPerSpin:         1,
		DailyBonusPeriod:  24 * time.Hour,
		DailyBonusAmount:  100,
		HourlyBonusPeriod: time.Hour,
		HourlyBonusAmount: 50,
		BonusHistoryLimit: 10,
		AutoSpinDelay:     time.Second,
		SettleDelay:       2500 * time.Millisecond,
	}
}

// LoadRules loads a rule set from a YAML file, falling back to defaults
// for any missing key
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return rules, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	if err := v.Unmarshal(&rules); err != nil {
		return rules, fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return rules, err
	}

	return rules, nil
}

// Validate checks rule consistency
func (r Rules) Validate() error {
	if r.MinBet < 1 {
		return fmt.Errorf("min_bet must be at least 1, got %d", r.MinBet)
	}
	if r.MaxBet < r.MinBet {
		return fmt.Errorf("max_bet %d is below min_bet %d", r.MaxBet, r.MinBet)
	}
	if r.StartingBet < r.MinBet || r.StartingBet > r.MaxBet {
		return fmt.Errorf("starting_bet %d outside [%d, %d]", r.StartingBet, r.MinBet, r.MaxBet)
	}
	if r.StartingBalance < 0 {
		return fmt.Errorf("starting_balance must not be negative, got %d", r.StartingBalance)
	}
	if r.TransferCap < 1 {
		return fmt.Errorf("transfer_cap must be at least 1, got %d", r.TransferCap)
	}
	if r.DailyBonusPeriod <= 0 || r.HourlyBonusPeriod <= 0 {
		return fmt.Errorf("bonus periods must be positive")
	}
	if r.BonusHistoryLimit < 1 {
		return fmt.Errorf("bonus_history_limit must be at least 1, got %d", r.BonusHistoryLimit)
	}
	return nil
}
