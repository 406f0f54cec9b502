package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the --ui setting of check.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// shouldUseTUI: auto рисует прогресс, только когда оба потока на терминале и
// это не CI; отчёт в пайпе не должен содержать escape-последовательностей.
func shouldUseTUI(mode uiMode) bool {
	if mode != uiModeAuto {
		return mode == uiModeOn
	}
	if os.Getenv("CI") != "" {
		return false
	}
	return isTerminal(os.Stdout) && isTerminal(os.Stderr)
}
