// Command calc is a terminal calculator driven by the keyboard.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/history"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := history.InitMetrics(); err != nil {
		return err
	}

	var svc *history.Service
	if cfg.HistoryFile != "" {
		store, err := history.NewFileStore(cfg.HistoryFile, cfg.HistoryLimit)
		if err != nil {
			return err
		}
		svc = history.NewService(store)
	}

	_, err = tea.NewProgram(newModel(svc)).Run()
	return err
}
