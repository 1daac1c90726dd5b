/*

This file loads historical reference price series from CSV, as an
alternative to synthetic paths. Expected layout: a header row, then
timestamp (RFC 3339 or unix seconds) and price columns.

*/

package pricepath

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/openamm/dfs/internal/logger"
	"github.com/openamm/dfs/internal/types"
)

var csvLogger = logger.GetForComponent("pricepath")

var (
	ErrMalformedPriceCSV = errors.New("malformed price csv")
	ErrEmptyPriceSeries  = errors.New("price series is empty")
)

func parseTimestamp(field string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, field); err == nil {
		return ts, nil
	}
	unix, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", field)
	}
	return time.Unix(unix, 0).UTC(), nil
}

// LoadCSV reads a price series from path. Rows must be in chronological
// order; prices must be positive and finite.
func LoadCSV(path string) ([]types.PriceData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	// Header row.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("%w: %s: missing header", ErrMalformedPriceCSV, path)
	}

	var series []types.PriceData
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformedPriceCSV, path, line+1, err)
		}
		line++

		ts, err := parseTimestamp(record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformedPriceCSV, path, line, err)
		}

		price, err := strconv.ParseFloat(record[1], 64)
		if err != nil || price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return nil, fmt.Errorf("%w: %s line %d: invalid price %q", ErrMalformedPriceCSV, path, line, record[1])
		}

		if len(series) > 0 && !ts.After(series[len(series)-1].Timestamp) {
			return nil, fmt.Errorf("%w: %s line %d: timestamps not strictly increasing", ErrMalformedPriceCSV, path, line)
		}

		series = append(series, types.PriceData{Timestamp: ts, Price: price})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPriceSeries, path)
	}

	csvLogger.Debug().Str("path", path).Int("observations", len(series)).Msg("Loaded price series")
	return series, nil
}
