package backtester

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/algotrader-go/algotrader/engine"
	"github.com/algotrader-go/algotrader/log"
	"github.com/shopspring/decimal"
)

// LoadTicksFromCSV loads price ticks for symbol from a CSV file. Rows are
// either timestamp,price or timestamp,volume,open,high,low,close in which
// case the close is used. Timestamps are unix seconds or RFC3339. A leading
// header row is skipped and ticks are returned in time order
func LoadTicksFromCSV(file, symbol string) (out []engine.Tick, err error) {
	csvFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if errClose := csvFile.Close(); errClose != nil {
			log.Errorln(log.BackTester, errClose)
		}
	}()
	return ReadTicks(csvFile, symbol)
}

// ReadTicks parses CSV tick rows from r, see LoadTicksFromCSV
func ReadTicks(r io.Reader, symbol string) ([]engine.Tick, error) {
	csvData := csv.NewReader(r)
	csvData.FieldsPerRecord = -1
	csvData.TrimLeadingSpace = true

	var out []engine.Tick
	for line := 1; ; line++ {
		row, err := csvData.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		tick, err := parseRow(row, symbol)
		if err != nil {
			if line == 1 && len(out) == 0 {
				log.Debugf(log.BackTester, "Skipping CSV header %v", row)
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, tick)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out, nil
}

func parseRow(row []string, symbol string) (engine.Tick, error) {
	var priceField string
	switch len(row) {
	case 2:
		priceField = row[1]
	case 6:
		priceField = row[5]
	default:
		return engine.Tick{}, fmt.Errorf("%w, got %d", errUnsupportedWidth, len(row))
	}
	ts, err := parseTimestamp(strings.TrimSpace(row[0]))
	if err != nil {
		return engine.Tick{}, fmt.Errorf("%w: timestamp %q: %w", errInvalidRow, row[0], err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(priceField))
	if err != nil {
		return engine.Tick{}, fmt.Errorf("%w: price %q: %w", errInvalidRow, priceField, err)
	}
	return engine.Tick{Symbol: symbol, Price: price, Time: ts}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(v, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}
