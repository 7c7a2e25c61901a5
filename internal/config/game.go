package config

import "github.com/caarlos0/env/v11"

// All amounts are in token units (TU): one ten-thousandth of a token.
// The fractional defaults from the product sheet (0.45 create, 0.0125 per
// move, 1 win prize, -0.5 abandon penalty) stay exact in int64 arithmetic.
type GameConfig struct {
	CreateCostTU     int64 `env:"GAME_CREATE_COST_TU" envDefault:"4500"`
	MoveCostTU       int64 `env:"GAME_MOVE_COST_TU" envDefault:"125"`
	WinPrizeTU       int64 `env:"GAME_WIN_PRIZE_TU" envDefault:"10000"`
	AbandonPenaltyTU int64 `env:"GAME_ABANDON_PENALTY_TU" envDefault:"-5000"`

	StartingTokensTU int64 `env:"STARTING_TOKENS_TU" envDefault:"10000"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
