package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether progress is drawn. Quiet runs, stdout
// output and tiny batches never get the UI in auto mode.
func shouldUseTUI(mode uiMode, quiet, stdout bool, files int) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return !quiet && !stdout && files > 1 && isTerminal(os.Stdout)
	}
}
