// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package emitter

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/buslog/lib/debugmsg"
)

// ColorMode selects when text output is colored.
type ColorMode string

const (
	// ColorAuto colors only when the output is a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways colors regardless of the output.
	ColorAlways ColorMode = "always"
	// ColorNever disables coloring.
	ColorNever ColorMode = "never"
)

// ParseColorMode validates a color mode name.
func ParseColorMode(name string) (ColorMode, error) {
	switch mode := ColorMode(name); mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown color mode %q (want auto, always, or never)", name)
	}
}

// LevelStyles maps the most severe bit of a level to a style.
type LevelStyles struct {
	severe  lipgloss.Style
	warning lipgloss.Style
	notice  lipgloss.Style
	debug   lipgloss.Style
}

// NewLevelStyles returns styles rendered through renderer. Most
// callers want [StylesFor].
func NewLevelStyles(renderer *lipgloss.Renderer) *LevelStyles {
	return &LevelStyles{
		severe:  renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning: renderer.NewStyle().Foreground(lipgloss.Color("11")),
		notice:  renderer.NewStyle().Foreground(lipgloss.Color("14")),
		debug:   renderer.NewStyle().Faint(true),
	}
}

// StylesFor returns level styles for writing to output under mode, or
// nil when the output should stay plain. In auto mode lipgloss
// inspects output to pick a color profile: a pipe or regular file gets
// the ASCII profile, which renders styles as plain text.
func StylesFor(output io.Writer, mode ColorMode) *LevelStyles {
	switch mode {
	case ColorNever:
		return nil
	case ColorAlways:
		renderer := lipgloss.NewRenderer(output, termenv.WithProfile(termenv.ANSI256))
		renderer.SetColorProfile(termenv.ANSI256)
		return NewLevelStyles(renderer)
	default:
		renderer := lipgloss.NewRenderer(output)
		if renderer.ColorProfile() == termenv.Ascii {
			return nil
		}
		return NewLevelStyles(renderer)
	}
}

// Render styles label according to level.
func (s *LevelStyles) Render(level debugmsg.Level, label string) string {
	switch {
	case level&(debugmsg.LevelFatal|debugmsg.LevelError|debugmsg.LevelCritical) != 0:
		return s.severe.Render(label)
	case level&debugmsg.LevelWarning != 0:
		return s.warning.Render(label)
	case level&(debugmsg.LevelMessage|debugmsg.LevelInfo) != 0:
		return s.notice.Render(label)
	case level&debugmsg.LevelDebug != 0:
		return s.debug.Render(label)
	default:
		return label
	}
}
