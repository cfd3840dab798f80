package config

import (
	_ "embed"
)

// DefaultYAML is the baseline regtest configuration shipped inside the
// binary, used by LoadEmbeddedDefault when no config file is supplied.
//
//go:embed goldrelay.default.yml
var DefaultYAML []byte
