package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/lifeos/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Logs       []jsonEntry `json:"logs"`
}

type jsonEntry struct {
	ID                string  `json:"id"`
	Date              string  `json:"date"`
	ProductivityScore int     `json:"productivity_score"`
	DeepWorkHours     float64 `json:"deep_work_hours"`
	DeepWork          string  `json:"deep_work"`
	Notes             string  `json:"notes,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func ToJSON(logs []store.DailyLog, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(logs),
	}

	for _, l := range logs {
		export.Logs = append(export.Logs, jsonEntry{
			ID:                l.ID,
			Date:              l.Date,
			ProductivityScore: l.ProductivityScore,
			DeepWorkHours:     l.DeepWorkHours,
			DeepWork:          formatHours(l.DeepWorkHours),
			Notes:             l.Notes,
			CreatedAt:         l.CreatedAt.Local().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
