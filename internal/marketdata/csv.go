package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/prismtrade/prismtrade/internal/apperrors"
	"github.com/prismtrade/prismtrade/pkg/types"
)

// StaticProvider serves a fixed in-memory series, used for offline analysis
// of CSV input.
type StaticProvider struct {
	Series types.Series
}

func (p *StaticProvider) ResolveInstrument(_ context.Context, symbol string) (Instrument, error) {
	return Instrument{Symbol: symbol, Status: "Offline"}, nil
}

func (p *StaticProvider) Candles(_ context.Context, _ string, limit int) (types.Series, error) {
	if limit > 0 && len(p.Series) > limit {
		return p.Series[len(p.Series)-limit:], nil
	}
	return p.Series, nil
}

// LoadCSV reads a candle series from a CSV file with a
// timestamp,close,volume header. Timestamps are RFC 3339 or unix
// milliseconds.
func LoadCSV(path string) (types.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, "marketdata", "load_csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, "marketdata", "load_csv")
	}
	if header[0] != "timestamp" || header[1] != "close" || header[2] != "volume" {
		return nil, apperrors.New(apperrors.CategoryStorage, "marketdata", "load_csv",
			"expected header: timestamp,close,volume")
	}

	var series types.Series
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryStorage, "marketdata", "load_csv")
		}
		ts, err := parseTimestamp(record[0])
		if err != nil {
			return nil, apperrors.New(apperrors.CategoryStorage, "marketdata", "load_csv",
				fmt.Sprintf("line %d: %v", line, err))
		}
		closePrice, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, apperrors.New(apperrors.CategoryStorage, "marketdata", "load_csv",
				fmt.Sprintf("line %d: bad close %q", line, record[1]))
		}
		volume, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, apperrors.New(apperrors.CategoryStorage, "marketdata", "load_csv",
				fmt.Sprintf("line %d: bad volume %q", line, record[2]))
		}
		series = append(series, types.Candle{Timestamp: ts, Close: closePrice, Volume: volume})
	}
	return series, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Parse(time.RFC3339, s)
}
