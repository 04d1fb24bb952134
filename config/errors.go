package config

import "errors"

var (
	ErrConfigMissing = errors.New("required config missing")
	ErrInvalidConfig = errors.New("invalid config")
)
