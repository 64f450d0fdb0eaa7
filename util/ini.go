package util

import (
	"gopkg.in/ini.v1"
)

// Ini loads an ini file into a flat key-value map.
func Ini(name string) (map[string]string, error) {
	cfg, err := ini.Load(name)
	if err != nil {
		return nil, err
	}
	return cfg.Section("").KeysHash(), nil
}
