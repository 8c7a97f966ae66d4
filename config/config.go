// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Process configuration store for murmur.

package config

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

const configName = "murmur.json"

// Config is the murmur process configuration, loaded once from
// murmur.json under the user config directory. Key bindings use the
// sequence-spec grammar ("Control-X 2", "Meta-v", "f p") mapped to
// command names.
type Config struct {
	LogFile        string            `json:"log_file"`
	Monochrome     bool              `json:"monochrome"`
	HistoryPath    string            `json:"history_path"`
	SyntheticCount int               `json:"synthetic_count"`
	Bindings       map[string]string `json:"bindings"`
}

var (
	mu      sync.RWMutex
	once    sync.Once
	current Config
	loadErr error
)

// Get returns the loaded configuration, reading it on first use.
func Get() Config {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Err returns the most recent load error. A missing config file is not
// an error; defaults apply.
func Err() error {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return loadErr
}

// Reload rereads the config file.
func Reload() error {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	loadErr = loadLocked()
	return loadErr
}

func initStore() {
	mu.Lock()
	defer mu.Unlock()
	loadErr = loadLocked()
	if loadErr != nil {
		log.Printf("Config: %v", loadErr)
	}
}

func loadLocked() error {
	current = defaults()
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &current)
}

// LoadFile replaces the store with the config at path, for tests and the
// -config flag.
func LoadFile(path string) error {
	once.Do(initStore)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg := defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	current = cfg
	loadErr = nil
	return nil
}
