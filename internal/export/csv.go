package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/lifeos/internal/store"
)

var csvHeader = []string{"ID", "Date", "Productivity", "Deep Work (h)", "Deep Work", "Notes", "Logged At"}

func ToCSV(logs []store.DailyLog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, l := range logs {
		row := []string{
			l.ID,
			l.Date,
			strconv.Itoa(l.ProductivityScore),
			strconv.FormatFloat(l.DeepWorkHours, 'f', -1, 64),
			formatHours(l.DeepWorkHours),
			l.Notes,
			l.CreatedAt.Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatHours renders fractional hours as HH:MM.
func formatHours(h float64) string {
	mins := int64(math.Round(h * 60))
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
