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

// progressThreshold is the tree size from which --ui auto shows progress.
const progressThreshold = 64

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

// shouldUseTUI decides whether a fmt run over files gets the progress view.
func shouldUseTUI(flags fmtFlags, files int) bool {
	return progressWanted(flags, files, isTerminal(os.Stdout))
}

func progressWanted(flags fmtFlags, files int, tty bool) bool {
	// прогресс заменяет только текстовый отчёт
	if files == 0 || flags.quiet || flags.stdout || flags.diff || flags.format != "text" {
		return false
	}
	switch flags.ui {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return tty && files >= progressThreshold
	}
}
