// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/masq"
	"github.com/mattn/go-isatty"
)

// Log formats
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// New builds a slog.Logger writing to w. Struct fields tagged
// `masq:"secret"` and the admin_token/authorization keys are redacted.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: masq.New(
			masq.WithTag("secret"),
			masq.WithFieldName("AdminToken"),
			masq.WithFieldName("admin_token"),
			masq.WithFieldName("authorization"),
		),
	}

	switch resolveFormat(w, format) {
	case FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// Setup installs the logger as the slog default.
func Setup(level, format string) error {
	logger, err := New(os.Stderr, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// resolveFormat turns "auto" into text on a terminal and JSON elsewhere.
func resolveFormat(w io.Writer, format string) string {
	format = strings.ToLower(format)
	if format != FormatAuto && format != "" {
		return format
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return FormatText
	}
	return FormatJSON
}
