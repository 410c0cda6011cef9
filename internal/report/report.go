// Package report renders metrics and backlog for terminal output as styled
// text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/ticket-metrics/internal/api/dto"
	"github.com/spec-kit/ticket-metrics/internal/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", value)
	}
}

// Options control rendering.
type Options struct {
	Format Format
	Color  bool
	// Limit caps the number of backlog rows; zero shows all.
	Limit int
}

// RenderMetrics writes the aggregate metrics to w.
func RenderMetrics(w io.Writer, m domain.Metrics, opts Options) error {
	resp := dto.NewMetricsResponse(m)
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, resp)
	case FormatYAML:
		return writeYAML(w, resp)
	default:
		return renderMetricsText(w, resp, newStyles(opts.Color))
	}
}

// RenderBacklog writes the open backlog list to w.
func RenderBacklog(w io.Writer, backlog []domain.BacklogTicket, opts Options) error {
	resp := dto.NewBacklogResponse(backlog, opts.Limit)
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, resp)
	case FormatYAML:
		return writeYAML(w, resp)
	default:
		return renderBacklogText(w, resp, newStyles(opts.Color))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
