// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Built-in configuration defaults.

package config

func defaults() Config {
	return Config{
		LogFile:        "",
		Monochrome:     false,
		HistoryPath:    "",
		SyntheticCount: 50,
		Bindings:       nil,
	}
}
