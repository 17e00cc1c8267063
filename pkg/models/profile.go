package models

import "github.com/shopspring/decimal"

// Profile is an investor profile used to tailor a wealth strategy.
// Values are forwarded as given; RiskTolerance is nominally 0–10 but is not
// range-checked.
type Profile struct {
	Age           int             `json:"age"            yaml:"age"            mapstructure:"age"`
	Income        decimal.Decimal `json:"income"         yaml:"income"         mapstructure:"income"` // annual, INR
	RiskTolerance int             `json:"risk_tolerance" yaml:"risk_tolerance" mapstructure:"risk_tolerance"`
	Goals         string          `json:"goals"          yaml:"goals"          mapstructure:"goals"`
	TimeHorizon   int             `json:"time_horizon"   yaml:"time_horizon"   mapstructure:"time_horizon"` // years
}
