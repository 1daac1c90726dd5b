/*

This file loads pool reserve snapshots exported in integer base units, the
way on-chain indexers record them, and converts them to display units for
pool initialization. Expected layout: a header row, then timestamp,
asset-reserve base units, quote-reserve base units.

*/

package pricepath

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	sdkmath "cosmossdk.io/math"

	"github.com/openamm/dfs/internal/types"
	"github.com/openamm/dfs/internal/utils"
)

var ErrMalformedReserveCSV = errors.New("malformed reserve csv")

// LoadReserveCSV reads reserve snapshots from path, dividing out
// 10^assetPrecision and 10^quotePrecision respectively.
func LoadReserveCSV(path string, assetPrecision, quotePrecision int) ([]types.ReserveSample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reserve csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 3

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("%w: %s: missing header", ErrMalformedReserveCSV, path)
	}

	var samples []types.ReserveSample
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformedReserveCSV, path, line+1, err)
		}
		line++

		ts, err := parseTimestamp(record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformedReserveCSV, path, line, err)
		}

		reserveX, err := parseBaseUnits(record[1], assetPrecision)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: asset reserve: %v", ErrMalformedReserveCSV, path, line, err)
		}
		reserveY, err := parseBaseUnits(record[2], quotePrecision)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: quote reserve: %v", ErrMalformedReserveCSV, path, line, err)
		}

		samples = append(samples, types.ReserveSample{
			Timestamp: ts,
			ReserveX:  reserveX,
			ReserveY:  reserveY,
		})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s: no samples", ErrMalformedReserveCSV, path)
	}

	csvLogger.Debug().Str("path", path).Int("samples", len(samples)).Msg("Loaded reserve snapshots")
	return samples, nil
}

func parseBaseUnits(field string, precision int) (float64, error) {
	amount, ok := sdkmath.NewIntFromString(field)
	if !ok {
		return 0, fmt.Errorf("invalid base-unit amount %q", field)
	}
	return utils.BaseUnitsToFloat64(amount, precision)
}
