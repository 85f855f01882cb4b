package config

import "errors"

// ErrUnknownKey indicates a config key that voicedata does not recognize.
var ErrUnknownKey = errors.New("unknown config key")

// ErrInvalidValue indicates a config value that fails validation for its key.
var ErrInvalidValue = errors.New("invalid config value")
