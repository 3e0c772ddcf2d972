package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/prismtrade/prismtrade/internal/apperrors"
)

// DefaultDir is where prediction snapshots are stored unless configured
// otherwise.
const DefaultDir = "data/predictions"

// ForecastPoint is the persisted projection for one horizon.
type ForecastPoint struct {
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// Snapshot is one persisted analysis outcome, written after every run so
// forecast accuracy can be evaluated against later prices.
type Snapshot struct {
	Symbol          string                   `json:"symbol"`
	Timestamp       time.Time                `json:"timestamp"`
	CurrentPrice    float64                  `json:"current_price"`
	Volatility      float64                  `json:"volatility"`
	Recommendation  string                   `json:"recommendation"`
	ConfidenceLevel int                      `json:"confidence_level"`
	Predictions     map[string]ForecastPoint `json:"predictions"`
}

// Recorder persists snapshots as one JSON file per analysis under
// <dir>/<symbol>/<timestamp>.json.
type Recorder struct {
	dir string
}

func NewRecorder(dir string) *Recorder {
	if dir == "" {
		dir = DefaultDir
	}
	return &Recorder{dir: dir}
}

// Save writes the snapshot. The symbol directory is created on demand.
func (r *Recorder) Save(snap Snapshot) error {
	symbolDir := filepath.Join(r.dir, snap.Symbol)
	if err := os.MkdirAll(symbolDir, 0o755); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryStorage, "history", "save")
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryStorage, "history", "save")
	}
	name := snap.Timestamp.Format("20060102_150405") + ".json"
	if err := os.WriteFile(filepath.Join(symbolDir, name), data, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryStorage, "history", "save")
	}
	return nil
}

// Load returns every snapshot for the symbol in chronological order.
func (r *Recorder) Load(symbol string) ([]Snapshot, error) {
	symbolDir := filepath.Join(r.dir, symbol)
	entries, err := os.ReadDir(symbolDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, "history", "load")
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(symbolDir, entry.Name()))
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryStorage, "history", "load")
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryStorage, "history", "load")
		}
		snapshots = append(snapshots, snap)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.Before(snapshots[j].Timestamp)
	})
	return snapshots, nil
}
