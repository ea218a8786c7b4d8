package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"PairSentinel/internal/model"
)

const csvDateLayout = "2006-01-02"

// CSVSource reads price history from <dir>/<SYMBOL>.csv files. Rows are
// either "date,close" or full "date,open,high,low,close[,volume]" bars,
// dates as 2006-01-02 in ascending order, header row optional. Parsed
// files are cached and re-read when their mtime changes.
type CSVSource struct {
	dir string
	log zerolog.Logger

	mu    sync.Mutex
	cache map[string]cachedFile
}

type cachedFile struct {
	mtime  time.Time
	series model.Series
}

// NewCSVSource builds a source over the given directory.
func NewCSVSource(dir string, log zerolog.Logger) *CSVSource {
	return &CSVSource{dir: dir, log: log, cache: make(map[string]cachedFile)}
}

func (s *CSVSource) Name() string { return "csv:" + s.dir }

func (s *CSVSource) History(ctx context.Context, symbol string, points int) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	series, err := s.load(symbol)
	if err != nil {
		return model.Series{}, err
	}
	return series.Tail(points), nil
}

func (s *CSVSource) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	series, err := s.History(ctx, symbol, 1)
	if err != nil {
		return 0, err
	}
	if series.Len() == 0 {
		return 0, fmt.Errorf("symbol %s: no rows", symbol)
	}
	return series.Last(), nil
}

func (s *CSVSource) load(symbol string) (model.Series, error) {
	path := filepath.Join(s.dir, symbol+".csv")
	info, err := os.Stat(path)
	if err != nil {
		return model.Series{}, fmt.Errorf("symbol %s: %w", symbol, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cache[symbol]; ok && c.mtime.Equal(info.ModTime()) {
		return c.series, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return model.Series{}, fmt.Errorf("symbol %s: %w", symbol, err)
	}
	defer f.Close()

	bars, err := parseBars(f)
	if err != nil {
		return model.Series{}, fmt.Errorf("symbol %s: %w", symbol, err)
	}
	series := model.CloseSeries(bars)
	s.cache[symbol] = cachedFile{mtime: info.ModTime(), series: series}
	s.log.Debug().Str("symbol", symbol).Int("rows", series.Len()).Msg("csv history loaded")
	return series, nil
}

func parseBars(f *os.File) ([]model.OHLCV, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var bars []model.OHLCV
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("row %d: want at least date and close, got %d fields", i+1, len(rec))
		}
		t, err := time.Parse(csvDateLayout, rec[0])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("row %d: bad date %q", i+1, rec[0])
		}
		bar := model.OHLCV{Time: t}
		if len(rec) >= 5 {
			if bar.Open, err = strconv.ParseFloat(rec[1], 64); err != nil {
				return nil, fmt.Errorf("row %d: bad open %q", i+1, rec[1])
			}
			if bar.High, err = strconv.ParseFloat(rec[2], 64); err != nil {
				return nil, fmt.Errorf("row %d: bad high %q", i+1, rec[2])
			}
			if bar.Low, err = strconv.ParseFloat(rec[3], 64); err != nil {
				return nil, fmt.Errorf("row %d: bad low %q", i+1, rec[3])
			}
			if bar.Close, err = strconv.ParseFloat(rec[4], 64); err != nil {
				return nil, fmt.Errorf("row %d: bad close %q", i+1, rec[4])
			}
			if len(rec) >= 6 {
				bar.Volume, _ = strconv.ParseFloat(rec[5], 64)
			}
		} else {
			if bar.Close, err = strconv.ParseFloat(rec[1], 64); err != nil {
				return nil, fmt.Errorf("row %d: bad close %q", i+1, rec[1])
			}
		}
		if len(bars) > 0 && !bar.Time.After(bars[len(bars)-1].Time) {
			return nil, fmt.Errorf("row %d: dates must be strictly ascending", i+1)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
