package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pxkundu/awdx/internal/meta"
	"github.com/pxkundu/awdx/internal/types"
)

// JSONFormatter outputs the report plus its aggregate as one JSON object.
type JSONFormatter struct{}

type jsonSummary struct {
	Version   string             `json:"version"`
	Mode      string             `json:"mode"`
	Root      string             `json:"root"`
	StartedAt time.Time          `json:"started_at"`
	Duration  float64            `json:"duration_seconds"`
	Score     int                `json:"security_score"`
	Total     int                `json:"total_issues"`
	Counts    map[string]int     `json:"severity_counts"`
	Blocking  bool               `json:"blocking"`
	ExitCode  int                `json:"exit_code"`
	Results   []types.ScanResult `json:"results"`
}

func (f *JSONFormatter) Format(w io.Writer, s *meta.Summary) error {
	counts := make(map[string]int, len(types.Severities))
	for _, sev := range types.Severities {
		counts[sev.String()] = s.Counts[sev]
	}
	out := jsonSummary{
		Version:   ToolVersion,
		Mode:      s.Report.Mode.String(),
		Root:      s.Report.Root,
		StartedAt: s.Report.StartedAt,
		Duration:  s.Report.Duration.Seconds(),
		Score:     s.Score,
		Total:     s.Total(),
		Counts:    counts,
		Blocking:  s.Blocking(),
		ExitCode:  s.ExitCode(),
		Results:   s.Report.Results,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
