// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/murmur/main.go
// Summary: The murmur terminal client entry point.
// Usage: Run `murmur` in a terminal; see -help for flags.

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/murmurchat/murmur/config"
	"github.com/murmurchat/murmur/store"
	"github.com/murmurchat/murmur/tty"
	"github.com/murmurchat/murmur/window"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("murmur", flag.ContinueOnError)
	configFile := fs.String("config", "", "Path to config file (default: murmur.json in the user config dir)")
	logPath := fs.String("log", "", "Append the debug log to this file")
	historyPath := fs.String("history", "", "Message history database path")
	mono := fs.Bool("mono", false, "Disable colors")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if *configFile != "" {
		if err := config.LoadFile(*configFile); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	cfg := config.Get()

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("murmur needs a terminal")
	}

	stateDir, err := config.StateDir()
	if err != nil {
		return fmt.Errorf("resolve state directory: %w", err)
	}

	logTo := firstOf(*logPath, cfg.LogFile, filepath.Join(stateDir, "murmur.log"))
	logFile, err := os.OpenFile(logTo, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("murmur starting")

	histPath := firstOf(*historyPath, cfg.HistoryPath, filepath.Join(stateDir, "history.db"))
	hist, err := store.OpenHistory("history", histPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer hist.Close()

	demo := store.NewSynthetic("demo", cfg.SyntheticCount)
	backend := store.NewAggregator(hist, demo)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}

	var colors tty.ColorAssigner = tty.StaticAssigner{}
	if *mono || cfg.Monochrome {
		colors = tty.NoColorAssigner{}
	}

	fe := tty.New(screen, colors)
	messager, err := window.NewMessager(fe, backend)
	if err != nil {
		return fmt.Errorf("build messager: %w", err)
	}
	if len(cfg.Bindings) > 0 {
		if err := messager.Rebind(cfg.Bindings); err != nil {
			return fmt.Errorf("apply bindings: %w", err)
		}
	}

	if err := fe.Initial(messager); err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}
	defer fe.Close()

	fe.Run()
	log.Println("murmur stopped cleanly")
	return nil
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
