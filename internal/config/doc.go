// Package config defines the bridge settings and provides helpers to load,
// validate and save them in YAML format.
//
// Values are read from a YAML file first and then overridden by environment
// variables prefixed with POSSESSION_, so an installation can be retuned
// without editing the file.
package config
