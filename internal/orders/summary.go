// File: internal/orders/summary.go
package orders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/avikamboj/ordersync-cli/internal/carrier"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// groupOrder fixes the render order of the summary's carrier groups.
var groupOrder = []carrier.Carrier{carrier.DTDC, carrier.Delhivery, carrier.Unknown}

// Record is one processed order as it lands in the run summary.
type Record struct {
	OrderID string `json:"order_id"`
	Pincode string `json:"pincode"`
}

// Summary aggregates one run's processed orders grouped by carrier. It is a
// write-only audit trail: persisted at run end, never read back by the tool.
type Summary struct {
	RunID      string                       `json:"run_id"`
	StartedAt  time.Time                    `json:"started_at"`
	FinishedAt time.Time                    `json:"finished_at"`
	RowsSeen   int                          `json:"rows_seen"`
	Groups     map[carrier.Carrier][]Record `json:"groups"`
}

// NewSummary starts an empty summary for the given run.
func NewSummary(runID string, startedAt time.Time) *Summary {
	return &Summary{
		RunID:     runID,
		StartedAt: startedAt,
		Groups:    make(map[carrier.Carrier][]Record),
	}
}

// Add appends a processed record under its carrier group.
func (s *Summary) Add(c carrier.Carrier, rec Record) {
	s.Groups[c] = append(s.Groups[c], rec)
}

// Processed returns the total number of recorded orders across all groups.
func (s *Summary) Processed() int {
	n := 0
	for _, recs := range s.Groups {
		n += len(recs)
	}
	return n
}

// Render formats the human-readable summary: for each carrier a numbered
// list of "Order: <id>, Pincode: <code>" lines.
func (s *Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s\n", s.RunID)
	fmt.Fprintf(&b, "Started:  %s\n", s.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Finished: %s\n", s.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Rows seen: %d, orders recorded: %d\n", s.RowsSeen, s.Processed())

	for _, c := range groupOrder {
		recs := s.Groups[c]
		fmt.Fprintf(&b, "\n%s (%d)\n", c, len(recs))
		for i, rec := range recs {
			fmt.Fprintf(&b, "%d. Order: %s, Pincode: %s\n", i+1, rec.OrderID, rec.Pincode)
		}
	}
	return b.String()
}

// Write persists the summary into dir as a timestamped text artifact plus a
// JSON sidecar with the same stem. It returns the text artifact's path.
func (s *Summary) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	stem := "sync-summary-" + s.FinishedAt.Format("20060102-150405")
	txtPath := filepath.Join(dir, stem+".txt")
	if err := os.WriteFile(txtPath, []byte(s.Render()), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return txtPath, fmt.Errorf("marshal summary sidecar: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stem+".json"), raw, 0o644); err != nil {
		return txtPath, fmt.Errorf("write summary sidecar: %w", err)
	}
	return txtPath, nil
}
