package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"PairSentinel/internal/model"
)

// SQLiteRecorder persists screener state to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent read performance (dashboards read while the
	// screener writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pairs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol1    TEXT NOT NULL,
			symbol2    TEXT NOT NULL,
			is_active  INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			UNIQUE(symbol1, symbol2)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_active ON pairs(is_active)`,

		`CREATE TABLE IF NOT EXISTS pair_metrics (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol1              TEXT NOT NULL,
			symbol2              TEXT NOT NULL,
			correlation          REAL,
			is_cointegrated      INTEGER NOT NULL DEFAULT 0,
			cointegration_pvalue REAL,
			hedge_ratio          REAL,
			spread_mean          REAL,
			spread_std           REAL,
			current_zscore       REAL,
			half_life            REAL,
			hurst_exponent       REAL,
			spread_data          TEXT,
			zscore_data          TEXT,
			timestamps           TEXT,
			analyzed_at          INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_pair ON pair_metrics(symbol1, symbol2, id)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol1          TEXT NOT NULL,
			symbol2          TEXT NOT NULL,
			signal_type      TEXT NOT NULL,
			zscore           REAL,
			hedge_ratio      REAL,
			strength         TEXT,
			confidence       REAL,
			target_zscore    REAL,
			stop_loss_zscore REAL,
			price1           REAL,
			price2           REAL,
			metadata         TEXT,
			notified         INTEGER NOT NULL DEFAULT 0,
			created_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_created ON signals(created_at)`,

		`CREATE TABLE IF NOT EXISTS positions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol1        TEXT NOT NULL,
			symbol2        TEXT NOT NULL,
			direction      TEXT NOT NULL,
			entry_zscore   REAL,
			entry_price1   REAL,
			entry_price2   REAL,
			hedge_ratio    REAL,
			current_zscore REAL,
			current_price1 REAL,
			current_price2 REAL,
			pnl_percent    REAL,
			is_open        INTEGER NOT NULL DEFAULT 1,
			opened_at      INTEGER NOT NULL,
			closed_at      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_open ON positions(is_open)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) AddPair(pair model.Pair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	_, err := r.db.Exec(`INSERT INTO pairs (symbol1, symbol2, is_active, created_at, updated_at)
		VALUES (?,?,1,?,?)
		ON CONFLICT(symbol1, symbol2) DO UPDATE SET is_active = 1, updated_at = excluded.updated_at`,
		pair.Symbol1, pair.Symbol2, now, now,
	)
	if err == nil {
		r.log.Info().Str("pair", pair.Key()).Msg("pair registered")
	}
	return err
}

func (r *SQLiteRecorder) RemovePair(pair model.Pair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec("UPDATE pairs SET is_active = 0, updated_at = ? WHERE symbol1 = ? AND symbol2 = ?",
		time.Now().Unix(), pair.Symbol1, pair.Symbol2,
	)
	if err == nil {
		r.log.Info().Str("pair", pair.Key()).Msg("pair deactivated")
	}
	return err
}

func (r *SQLiteRecorder) ActivePairs() ([]model.Pair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query("SELECT symbol1, symbol2 FROM pairs WHERE is_active = 1 ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Pair
	for rows.Next() {
		var p model.Pair
		if err := rows.Scan(&p.Symbol1, &p.Symbol2); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveMetrics maps undefined statistics to NULL columns; a non-mean-reverting
// half-life stores as the numeric placeholder so dashboards can still sort on
// the column.
func (r *SQLiteRecorder) SaveMetrics(m *model.PairMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spread, zscores, stamps := chartColumns(m)
	analyzedAt := m.LastUpdated
	if analyzedAt.IsZero() {
		analyzedAt = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO pair_metrics
		(symbol1, symbol2, correlation, is_cointegrated, cointegration_pvalue,
		 hedge_ratio, spread_mean, spread_std, current_zscore,
		 half_life, hurst_exponent, spread_data, zscore_data, timestamps, analyzed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.Symbol1, m.Symbol2,
		nullIfNaN(m.Correlation), m.IsCointegrated, nullIfNaN(m.CointegrationPValue),
		nullIfNaN(m.HedgeRatio), nullIfNaN(m.SpreadMean), nullIfNaN(m.SpreadStd),
		nullIfNaN(m.CurrentZScore),
		estimateColumn(m.HalfLife), estimateColumn(m.HurstExponent),
		spread, zscores, stamps,
		analyzedAt.Unix(),
	)
	return err
}

func (r *SQLiteRecorder) LatestMetrics() ([]*model.PairMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT pm.symbol1, pm.symbol2, pm.correlation, pm.is_cointegrated,
			pm.cointegration_pvalue, pm.hedge_ratio, pm.spread_mean, pm.spread_std,
			pm.current_zscore, pm.half_life, pm.hurst_exponent,
			pm.spread_data, pm.zscore_data, pm.timestamps, pm.analyzed_at
		FROM pair_metrics pm
		INNER JOIN (
			SELECT symbol1, symbol2, MAX(id) AS max_id
			FROM pair_metrics GROUP BY symbol1, symbol2
		) latest ON pm.id = latest.max_id
		INNER JOIN pairs p ON pm.symbol1 = p.symbol1 AND pm.symbol2 = p.symbol2
		WHERE p.is_active = 1
		ORDER BY pm.symbol1, pm.symbol2`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PairMetrics
	for rows.Next() {
		var (
			m                            model.PairMetrics
			corr, pval, hedge, mean, std sql.NullFloat64
			z, hl, hurst                 sql.NullFloat64
			spreadJSON, zscoreJSON       sql.NullString
			stampsJSON                   sql.NullString
			analyzedAt                   int64
		)
		if err := rows.Scan(&m.Symbol1, &m.Symbol2, &corr, &m.IsCointegrated,
			&pval, &hedge, &mean, &std, &z, &hl, &hurst,
			&spreadJSON, &zscoreJSON, &stampsJSON, &analyzedAt); err != nil {
			return nil, err
		}
		// Stored NULLs come back as conservative defaults: a zero
		// correlation and a p-value of 1 keep the pair untradeable,
		// and NULL estimates load as insufficient data.
		m.Correlation = floatOr(corr, 0)
		m.CointegrationPValue = floatOr(pval, 1.0)
		m.HedgeRatio = floatOr(hedge, 1.0)
		m.SpreadMean = floatOr(mean, 0)
		m.SpreadStd = floatOr(std, 1)
		m.CurrentZScore = floatOr(z, 0)
		m.HedgeIntercept = math.NaN()
		m.HedgeStdErr = math.NaN()
		m.HedgeTStat = math.NaN()
		m.HedgePValue = math.NaN()
		m.HedgeRSquared = math.NaN()
		if hl.Valid {
			m.HalfLife = model.EstimateFromStored(hl.Float64)
		}
		if hurst.Valid {
			m.HurstExponent = model.EstimateOf(hurst.Float64)
		}
		m.Spread, m.ZScores = chartSeries(spreadJSON, zscoreJSON, stampsJSON)
		m.LastUpdated = time.Unix(analyzedAt, 0).UTC()
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) SaveSignal(sig *model.TradingSignal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var meta any
	if len(sig.Metadata) > 0 {
		b, err := json.Marshal(sig.Metadata)
		if err != nil {
			return 0, fmt.Errorf("marshal signal metadata: %w", err)
		}
		meta = string(b)
	}
	createdAt := sig.GeneratedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := r.db.Exec(`INSERT INTO signals
		(symbol1, symbol2, signal_type, zscore, hedge_ratio, strength, confidence,
		 target_zscore, stop_loss_zscore, price1, price2, metadata, notified, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,0,?)`,
		sig.Symbol1, sig.Symbol2, string(sig.Type),
		nullIfNaN(sig.ZScore), nullIfNaN(sig.HedgeRatio), string(sig.Strength), sig.Confidence,
		sig.TargetZ, sig.StopZ, ptrColumn(sig.Price1), ptrColumn(sig.Price2),
		meta, createdAt.Unix(),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	r.log.Debug().Int64("id", id).Str("signal", string(sig.Type)).Str("pair", sig.Display()).Msg("signal saved")
	return id, nil
}

func (r *SQLiteRecorder) MarkNotified(signalID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec("UPDATE signals SET notified = 1 WHERE id = ?", signalID)
	return err
}

func (r *SQLiteRecorder) RecentSignals(limit int, unnotifiedOnly bool) ([]*model.TradingSignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := `SELECT symbol1, symbol2, signal_type, zscore, hedge_ratio, strength, confidence,
		target_zscore, stop_loss_zscore, price1, price2, metadata, created_at FROM signals`
	if unnotifiedOnly {
		q += " WHERE notified = 0"
	}
	q += " ORDER BY id DESC LIMIT ?"

	rows, err := r.db.Query(q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.TradingSignal
	for rows.Next() {
		var (
			sig                          model.TradingSignal
			typ, strength                string
			z, hedge, conf, target, stop sql.NullFloat64
			p1, p2                       sql.NullFloat64
			metaJSON                     sql.NullString
			createdAt                    int64
		)
		if err := rows.Scan(&sig.Symbol1, &sig.Symbol2, &typ, &z, &hedge, &strength, &conf,
			&target, &stop, &p1, &p2, &metaJSON, &createdAt); err != nil {
			return nil, err
		}
		sig.Type = model.SignalType(typ)
		sig.ZScore = floatOr(z, 0)
		sig.HedgeRatio = floatOr(hedge, 1)
		sig.Strength = model.Strength(strength)
		if strength == "" {
			sig.Strength = model.StrengthModerate
		}
		sig.Confidence = floatOr(conf, 0)
		sig.TargetZ = floatOr(target, 0)
		sig.StopZ = floatOr(stop, 3)
		sig.Price1 = nullPtr(p1)
		sig.Price2 = nullPtr(p2)
		if metaJSON.Valid {
			if err := json.Unmarshal([]byte(metaJSON.String), &sig.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal signal metadata: %w", err)
			}
		}
		sig.GeneratedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, &sig)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) OpenPosition(pos *model.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	openedAt := pos.OpenedAt
	if openedAt.IsZero() {
		openedAt = time.Now().UTC()
	}

	// A fresh position is marked at its entry.
	res, err := r.db.Exec(`INSERT INTO positions
		(symbol1, symbol2, direction, entry_zscore, entry_price1, entry_price2,
		 hedge_ratio, current_zscore, current_price1, current_price2, is_open, opened_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,1,?)`,
		pos.Symbol1, pos.Symbol2, string(pos.Direction),
		nullIfNaN(pos.EntryZScore), pos.EntryPrice1, pos.EntryPrice2,
		nullIfNaN(pos.HedgeRatio), nullIfNaN(pos.EntryZScore),
		ptrColumn(pos.CurrentPrice1), ptrColumn(pos.CurrentPrice2),
		openedAt.Unix(),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	pos.ID = id
	pos.IsOpen = true
	pos.OpenedAt = openedAt
	pos.CurrentZScore = pos.EntryZScore

	r.log.Info().
		Str("direction", string(pos.Direction)).
		Str("pair", pos.Key()).
		Float64("entry_zscore", pos.EntryZScore).
		Msg("position opened")
	return nil
}

func (r *SQLiteRecorder) UpdatePosition(id int64, currentZScore float64, price1, price2, pnlPercent *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`UPDATE positions
		SET current_zscore = ?, current_price1 = ?, current_price2 = ?, pnl_percent = ?
		WHERE id = ? AND is_open = 1`,
		nullIfNaN(currentZScore), ptrColumn(price1), ptrColumn(price2), ptrColumn(pnlPercent), id,
	)
	return err
}

func (r *SQLiteRecorder) ClosePosition(pair model.Pair) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`UPDATE positions SET is_open = 0, closed_at = ?
		WHERE symbol1 = ? AND symbol2 = ? AND is_open = 1`,
		time.Now().Unix(), pair.Symbol1, pair.Symbol2,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		r.log.Info().Str("pair", pair.Key()).Msg("position closed")
	}
	return n > 0, nil
}

const positionColumns = `id, symbol1, symbol2, direction, entry_zscore, entry_price1, entry_price2,
	hedge_ratio, current_zscore, current_price1, current_price2, pnl_percent, is_open, opened_at, closed_at`

func (r *SQLiteRecorder) OpenPositions() ([]*model.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT ` + positionColumns + ` FROM positions WHERE is_open = 1 ORDER BY opened_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) PositionFor(pair model.Pair) (*model.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT `+positionColumns+` FROM positions
		WHERE symbol1 = ? AND symbol2 = ? AND is_open = 1 LIMIT 1`,
		pair.Symbol1, pair.Symbol2,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanPosition(rows)
}

func (r *SQLiteRecorder) Stats() (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	const latestJoin = `FROM pair_metrics pm
		INNER JOIN (
			SELECT symbol1, symbol2, MAX(id) AS max_id
			FROM pair_metrics GROUP BY symbol1, symbol2
		) latest ON pm.id = latest.max_id
		INNER JOIN pairs p ON pm.symbol1 = p.symbol1 AND pm.symbol2 = p.symbol2
		WHERE p.is_active = 1`

	var s Stats
	if err := r.db.QueryRow("SELECT COUNT(*) FROM pairs WHERE is_active = 1").Scan(&s.ActivePairs); err != nil {
		return s, err
	}
	if err := r.db.QueryRow("SELECT COUNT(*) " + latestJoin + " AND pm.is_cointegrated = 1").Scan(&s.Cointegrated); err != nil {
		return s, err
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM positions WHERE is_open = 1").Scan(&s.OpenPositions); err != nil {
		return s, err
	}
	hourAgo := time.Now().Add(-time.Hour).Unix()
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM signals
		WHERE created_at > ? AND signal_type IN ('LONG_SPREAD', 'SHORT_SPREAD')`, hourAgo).Scan(&s.SignalsLastHour); err != nil {
		return s, err
	}
	var avg sql.NullFloat64
	if err := r.db.QueryRow("SELECT AVG(ABS(pm.correlation)) " + latestJoin).Scan(&avg); err != nil {
		return s, err
	}
	s.AvgCorrelation = floatOr(avg, 0)
	return s, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func scanPosition(rows *sql.Rows) (*model.Position, error) {
	var (
		pos              model.Position
		direction        string
		entryZ           sql.NullFloat64
		hedge, curZ, pnl sql.NullFloat64
		cp1, cp2         sql.NullFloat64
		openedAt         int64
		closedAt         sql.NullInt64
	)
	if err := rows.Scan(&pos.ID, &pos.Symbol1, &pos.Symbol2, &direction,
		&entryZ, &pos.EntryPrice1, &pos.EntryPrice2,
		&hedge, &curZ, &cp1, &cp2, &pnl, &pos.IsOpen, &openedAt, &closedAt); err != nil {
		return nil, err
	}
	pos.Direction = model.SignalType(direction)
	pos.EntryZScore = floatOr(entryZ, 0)
	pos.HedgeRatio = floatOr(hedge, 1)
	pos.CurrentZScore = floatOr(curZ, pos.EntryZScore)
	pos.CurrentPrice1 = nullPtr(cp1)
	pos.CurrentPrice2 = nullPtr(cp2)
	pos.PnLPercent = floatOr(pnl, 0)
	pos.OpenedAt = time.Unix(openedAt, 0).UTC()
	if closedAt.Valid {
		t := time.Unix(closedAt.Int64, 0).UTC()
		pos.ClosedAt = &t
	}
	return &pos, nil
}

// chartColumns keeps the rows where both spread and z-score are defined and
// JSON-encodes them for the chart columns. An empty result stores as NULL.
func chartColumns(m *model.PairMetrics) (spread, zscores, stamps any) {
	var sp, zs []float64
	var ts []string
	n := m.Spread.Len()
	if len(m.ZScores) < n {
		n = len(m.ZScores)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(m.Spread.Values[i]) || math.IsNaN(m.ZScores[i]) {
			continue
		}
		sp = append(sp, m.Spread.Values[i])
		zs = append(zs, m.ZScores[i])
		ts = append(ts, m.Spread.Times[i].UTC().Format(time.RFC3339))
	}
	if len(sp) == 0 {
		return nil, nil, nil
	}
	spb, _ := json.Marshal(sp)
	zsb, _ := json.Marshal(zs)
	tsb, _ := json.Marshal(ts)
	return string(spb), string(zsb), string(tsb)
}

func chartSeries(spreadJSON, zscoreJSON, stampsJSON sql.NullString) (model.Series, []float64) {
	if !spreadJSON.Valid || !zscoreJSON.Valid || !stampsJSON.Valid {
		return model.Series{}, nil
	}
	var sp, zs []float64
	var ts []string
	if json.Unmarshal([]byte(spreadJSON.String), &sp) != nil ||
		json.Unmarshal([]byte(zscoreJSON.String), &zs) != nil ||
		json.Unmarshal([]byte(stampsJSON.String), &ts) != nil {
		return model.Series{}, nil
	}
	if len(ts) != len(sp) || len(zs) != len(sp) {
		return model.Series{}, nil
	}
	times := make([]time.Time, len(ts))
	for i, s := range ts {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return model.Series{}, nil
		}
		times[i] = t
	}
	return model.Series{Times: times, Values: sp}, zs
}

func nullIfNaN(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func estimateColumn(e model.Estimate) any {
	switch {
	case e.HasValue():
		return e.Value()
	case e.IsNotMeanReverting():
		return model.NotMeanRevertingPlaceholder
	default:
		return nil
	}
}

func ptrColumn(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func floatOr(v sql.NullFloat64, fallback float64) float64 {
	if v.Valid {
		return v.Float64
	}
	return fallback
}
