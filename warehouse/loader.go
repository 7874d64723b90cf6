package warehouse

import (
	"fmt"
	"path/filepath"
	"time"

	"road-warehouse/sheet"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileState is the position of a clean file in the load state machine:
// Discovered, Parsed, Validated, then Committed or RolledBack.
type FileState int

const (
	StateDiscovered FileState = iota
	StateParsed
	StateValidated
	StateCommitted
	StateRolledBack
)

func (s FileState) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateParsed:
		return "parsed"
	case StateValidated:
		return "validated"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled-back"
	default:
		return fmt.Sprintf("FileState(%d)", int(s))
	}
}

// RowError is a rejected row; Record identifies it in reports.
type RowError struct {
	Record string
	Err    error
}

// StructuralError is why a file could not be loaded at all: it could not be
// read, lacks columns, or an insert failed and the transaction rolled back.
type StructuralError struct {
	File string
	Err  error
}

func (e *StructuralError) Error() string { return fmt.Sprintf("%s: %v", e.File, e.Err) }

func (e *StructuralError) Unwrap() error { return e.Err }

// FileOutcome is the result of loading one clean file.
type FileOutcome struct {
	Path     string
	File     string
	Category string
	State    FileState
	Inserted int
	Rejected []RowError
	Err      error
}

// Ledgered reports whether the file now has a ledger row.
func (o FileOutcome) Ledgered() bool { return o.State == StateCommitted }

// factLoader is the category specific part of a file load. Validate runs
// outside the transaction and may read the store; Insert runs inside it and
// must only use tx.
type factLoader interface {
	Columns() []string
	Validate(db *gorm.DB, t sheet.Table) ([]RowError, error)
	Insert(tx *gorm.DB) (int, error)
}

func newFactLoader(category string, c *Cache, q *sheet.Quality) (factLoader, error) {
	switch category {
	case CategoryAccidents:
		return &accidentLoader{cache: c, quality: q}, nil
	case CategoryVehicles:
		return &vehicleLoader{cache: c}, nil
	case CategoryTraffic:
		return &trafficLoader{cache: c}, nil
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
}

// fileLoader drives one clean file through the state machine.
type fileLoader struct {
	db      *gorm.DB
	cache   *Cache
	log     *zap.Logger
	now     func() time.Time
	quality *sheet.Quality
}

func (l *fileLoader) load(category, path string) FileOutcome {
	out := FileOutcome{Path: path, File: filepath.Base(path), Category: category, State: StateDiscovered}
	log := l.log.With(zap.String("category", category), zap.String("file", out.File))
	start := time.Now()

	fl, err := newFactLoader(category, l.cache, l.quality)
	if err != nil {
		out.Err = err
		return out
	}
	done, err := IsLoaded(l.db, category, out.File)
	if err == nil && done {
		err = ErrAlreadyLoaded
	}
	if err != nil {
		out.Err = &StructuralError{File: out.File, Err: err}
		log.Warn("file not loaded", zap.Error(err))
		return out
	}
	t, err := sheet.ReadDelimited(path)
	if err == nil {
		err = sheet.RequireColumns(t, fl.Columns())
	}
	if err != nil {
		out.Err = &StructuralError{File: out.File, Err: err}
		log.Warn("unreadable clean file", zap.Error(err))
		return out
	}
	out.State = StateParsed
	log.Debug("file state", zap.Stringer("state", out.State), zap.Int("rows", t.Len()))

	out.Rejected, err = fl.Validate(l.db, t)
	if err != nil {
		out.Err = &StructuralError{File: out.File, Err: err}
		return out
	}
	out.State = StateValidated
	log.Debug("file state", zap.Stringer("state", out.State), zap.Int("rejected", len(out.Rejected)))

	err = l.db.Transaction(func(tx *gorm.DB) error {
		n, err := fl.Insert(tx)
		if err != nil {
			return err
		}
		out.Inserted = n
		return markLoaded(tx, category, out.File, l.now())
	})
	if err != nil {
		out.State = StateRolledBack
		out.Inserted = 0
		out.Err = &StructuralError{File: out.File, Err: err}
		log.Warn("file rolled back", zap.Error(err))
		return out
	}
	out.State = StateCommitted
	log.Info("file committed",
		zap.Int("rows", out.Inserted),
		zap.Int("rejected", len(out.Rejected)),
		zap.Duration("elapsed", time.Since(start)))
	return out
}

// createAll inserts rows in batches. ignore turns unique conflicts into
// no-ops, which is how bridges and dependents are written.
func createAll[T any](tx *gorm.DB, rows []T, ignore bool) error {
	if len(rows) == 0 {
		return nil
	}
	if ignore {
		tx = tx.Clauses(clause.OnConflict{DoNothing: true})
	}
	return tx.CreateInBatches(rows, insertBatch).Error
}

const insertBatch = 200
