package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Backend names accepted by New.
const (
	BackendSlogJSON = "slog"
	BackendSlogText = "text"
	BackendZap      = "zap"
)

// New builds the Logger selected by backend. Slog loggers write to w;
// the zap logger writes to stdout with the production encoder.
func New(backend string, service string, w io.Writer) (Logger, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSlogJSON:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil))).With("service", service), nil
	case BackendSlogText:
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, nil))).With("service", service), nil
	case BackendZap:
		zl, err := newZapProduction(service)
		if err != nil {
			return nil, fmt.Errorf("zap init: %w", err)
		}
		return NewZapLogger(zl), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
