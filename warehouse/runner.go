package warehouse

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"road-warehouse/report"
	"road-warehouse/sheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RunnerConfig struct {
	Config Config
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics defaults to a fresh registry.
	Metrics *Metrics
	// Now stamps ledger rows; defaults to time.Now.
	Now func() time.Time
}

// Runner owns the warehouse store and runs the pipeline phases against it.
// It is not safe for concurrent use; one run writes at a time.
type Runner struct {
	cfg     Config
	db      *gorm.DB
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

func NewRunner(rc RunnerConfig) (*Runner, error) {
	if err := rc.Config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	r := &Runner{cfg: rc.Config, log: rc.Logger, metrics: rc.Metrics, now: rc.Now}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.metrics == nil {
		r.metrics = NewMetrics()
	}
	if r.now == nil {
		r.now = time.Now
	}
	db, err := OpenDB(r.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.cfg.Database, err)
	}
	r.db = db
	return r, nil
}

func (r *Runner) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	err := closeDB(r.db)
	r.db = nil
	return err
}

func (r *Runner) Metrics() *Metrics { return r.metrics }

// Result summarizes one invocation.
type Result struct {
	RunID         string
	Seed          SeedResult
	Normalized    []NormalizeOutcome
	Loaded        []FileOutcome
	VehicleTotals int64
	Quality       []sheet.Observation
	Report        report.Report
}

// Run executes every phase: structure, normalize (per category), facts (per
// category) and post-load. ctx is checked between files and between steps;
// a file that has started always finishes.
func (r *Runner) Run(ctx context.Context, progress report.ProgressFunc) (Result, error) {
	x := r.start(ctx, progress, 2+2*len(Categories))
	err := x.structure()
	if err == nil {
		err = x.normalizeAll()
	}
	if err == nil {
		err = x.loadAll()
	}
	if err == nil {
		err = x.postLoad()
	}
	return x.finish(err)
}

// Init migrates the store and seeds the dimensions.
func (r *Runner) Init(ctx context.Context, progress report.ProgressFunc) (Result, error) {
	x := r.start(ctx, progress, 1)
	return x.finish(x.structure())
}

// Transform normalizes new workbooks into clean files.
func (r *Runner) Transform(ctx context.Context, progress report.ProgressFunc) (Result, error) {
	x := r.start(ctx, progress, len(Categories))
	return x.finish(x.normalizeAll())
}

// Load loads clean files not yet in a ledger, then refreshes the vehicle
// totals. The store must have been seeded.
func (r *Runner) Load(ctx context.Context, progress report.ProgressFunc) (Result, error) {
	x := r.start(ctx, progress, len(Categories)+1)
	err := x.loadAll()
	if err == nil {
		err = x.postLoad()
	}
	return x.finish(err)
}

// run is the state of one invocation.
type run struct {
	*Runner
	ctx     context.Context
	log     *zap.Logger
	agg     *report.Aggregator
	quality *sheet.Quality
	noted   int
	step    int
	total   int
	res     Result
}

func (r *Runner) start(ctx context.Context, progress report.ProgressFunc, total int) *run {
	id := uuid.NewString()
	limits := make(map[string]int, len(Categories))
	for _, c := range Categories {
		limits[errorBlockTitle(c)] = r.cfg.Report.limit(c)
	}
	return &run{
		Runner:  r,
		ctx:     ctx,
		log:     r.log.With(zap.String("run_id", id)),
		agg:     report.New(progress, limits),
		quality: &sheet.Quality{},
		total:   total,
		res:     Result{RunID: id},
	}
}

func errorBlockTitle(category string) string {
	return fmt.Sprintf("Load error report (%s)", category)
}

func (x *run) tick() {
	x.step++
	x.agg.Emit(report.Progress{Completed: x.step, Total: x.total})
}

// drainQuality reports observations noted since the last call.
func (x *run) drainQuality() {
	obs := x.quality.Observations[x.noted:]
	x.noted = len(x.quality.Observations)
	for _, o := range obs {
		x.metrics.Quality.WithLabelValues(o.Kind).Add(float64(o.Count))
		x.log.Info("data quality", zap.String("kind", o.Kind), zap.String("file", o.Source), zap.Int("count", o.Count))
		x.agg.Infof("Quality: %s", o)
	}
}

func (x *run) finish(err error) (Result, error) {
	x.drainQuality()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		x.agg.Warnf("run cancelled after %d of %d steps", x.step, x.total)
	}
	x.res.Report = x.agg.Flush()
	x.res.Quality = x.quality.Observations
	x.metrics.LastRun.Set(float64(x.now().Unix()))
	if path := x.cfg.MetricsFile; path != "" {
		if werr := x.metrics.WriteTextfile(path); werr != nil {
			x.log.Warn("write metrics", zap.String("path", path), zap.Error(werr))
		}
	}
	if err != nil {
		x.log.Error("run failed", zap.Error(err))
		return x.res, err
	}
	x.log.Info("run finished",
		zap.Int("normalized", len(x.res.Normalized)),
		zap.Int("loaded", len(x.res.Loaded)),
		zap.Int("rejected", len(x.res.Report.Rejected)))
	return x.res, nil
}

func (x *run) structure() error {
	if err := x.ctx.Err(); err != nil {
		return err
	}
	x.agg.Emit(report.StageStarted{Name: "Structure"})
	seed, err := Seed(x.ctx, x.db, x.cfg)
	if err != nil {
		return fmt.Errorf("structure: %w", err)
	}
	x.res.Seed = seed
	if seed.DateTimes > 0 {
		x.agg.Infof("dim_DateTime: %d rows", seed.DateTimes)
	}
	if seed.Km > 0 {
		x.agg.Infof("dim_Km: %d rows", seed.Km)
	}
	x.agg.Infof("Dimensions ready")
	x.tick()
	return nil
}

// plazaNames lists the named toll plazas used to tag traffic workbooks.
func (x *run) plazaNames() ([]string, error) {
	var names []string
	err := x.db.Model(&DimPlaza{}).Where("PlazaName <> ?", sheet.UnknownPlaza).Order("idPlaza").Pluck("PlazaName", &names).Error
	return names, err
}

func (x *run) normalizeAll() error {
	if err := x.ctx.Err(); err != nil {
		return err
	}
	sources := x.sources()
	found, err := discoverAll(x.ctx, sources, DiscoverWorkbooks)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	plazas, err := x.plazaNames()
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	for _, c := range Categories {
		if err := x.ctx.Err(); err != nil {
			return err
		}
		x.agg.Emit(report.StageStarted{Name: "Normalize " + c})
		src, ok := x.cfg.Sources.Get(c)
		if ok {
			if err := x.normalize(src, found[c], plazas); err != nil {
				return err
			}
		}
		x.drainQuality()
		x.tick()
	}
	return nil
}

func (x *run) normalize(src Source, files []string, plazas []string) error {
	written := 0
	for _, f := range files {
		if err := x.ctx.Err(); err != nil {
			return err
		}
		o, err := Normalize(src, f, plazas, x.quality)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", src.Category, err)
		}
		x.res.Normalized = append(x.res.Normalized, o)
		name := filepath.Base(f)
		switch {
		case o.Skipped:
			x.metrics.file(src.Category, OutcomeSkipped)
		case o.SchemaErr != nil:
			x.metrics.file(src.Category, OutcomeSchemaError)
			x.agg.Emit(report.FileRejected{Category: src.Category, File: name, Reason: o.SchemaErr.Error()})
			x.agg.Warnf("%s: %v", name, o.SchemaErr)
			x.log.Warn("schema error", zap.String("category", src.Category), zap.String("file", name), zap.Error(o.SchemaErr))
			if o.Quarantined != "" {
				x.agg.Infof("%s moved to %s", name, o.Quarantined)
			}
		default:
			x.metrics.file(src.Category, OutcomeNormalized)
			if o.Rows > 0 {
				written++
				x.log.Debug("normalized", zap.String("category", src.Category), zap.String("file", name), zap.Int("rows", o.Rows))
			}
		}
	}
	x.agg.Infof("%s: %d workbooks found, %d clean files written", src.Category, len(files), written)
	return nil
}

func (x *run) sources() []Source {
	var out []Source
	for _, c := range Categories {
		if s, ok := x.cfg.Sources.Get(c); ok {
			out = append(out, s)
		}
	}
	return out
}

func (x *run) loadAll() error {
	if err := x.ctx.Err(); err != nil {
		return err
	}
	found, err := discoverAll(x.ctx, x.sources(), DiscoverClean)
	if err != nil {
		return fmt.Errorf("facts: %w", err)
	}
	cache, err := LoadCache(x.db)
	if err != nil {
		return fmt.Errorf("facts: %w", err)
	}
	fl := &fileLoader{db: x.db, cache: cache, log: x.log, now: x.now, quality: x.quality}
	for _, c := range Categories {
		if err := x.ctx.Err(); err != nil {
			return err
		}
		x.agg.Emit(report.StageStarted{Name: "Load " + c})
		if _, ok := x.cfg.Sources.Get(c); ok {
			if err := x.loadCategory(fl, c, found[c]); err != nil {
				return err
			}
		}
		x.drainQuality()
		x.tick()
	}
	return nil
}

func (x *run) loadCategory(fl *fileLoader, category string, files []string) error {
	if category == CategoryVehicles {
		if err := fl.cache.RefreshAccidents(x.db); err != nil {
			return fmt.Errorf("facts %s: %w", category, err)
		}
	}
	loaded, err := LoadedFiles(x.db, category)
	if err != nil {
		return fmt.Errorf("facts %s: %w", category, err)
	}
	todo := pending(files, loaded)
	x.agg.Infof("%s: %d new clean files", category, len(todo))

	var outcomes []FileOutcome
	for _, f := range todo {
		if err := x.ctx.Err(); err != nil {
			x.reportErrors(category, outcomes)
			return err
		}
		o := fl.load(category, f)
		outcomes = append(outcomes, o)
		x.res.Loaded = append(x.res.Loaded, o)
		x.metrics.loaded(o)
		if o.Ledgered() {
			x.agg.Infof("Loaded %s: %d rows, %d rejected", o.File, o.Inserted, len(o.Rejected))
			continue
		}
		x.agg.Emit(report.FileRejected{Category: category, File: o.File, Reason: o.Err.Error()})
		x.agg.Warnf("%s not loaded (%s): %v", o.File, o.State, o.Err)
	}
	x.reportErrors(category, outcomes)
	return nil
}

// reportErrors opens the category's error block and lists every failed
// file and rejected record.
func (x *run) reportErrors(category string, outcomes []FileOutcome) {
	opened := false
	for _, o := range outcomes {
		if o.Err == nil && len(o.Rejected) == 0 {
			continue
		}
		if !opened {
			x.agg.Emit(report.BlockStarted{Title: errorBlockTitle(category), Limit: x.cfg.Report.limit(category)})
			opened = true
		}
		x.agg.Emit(report.Detail{Text: "- File: " + o.File})
		if o.Err != nil {
			x.agg.Emit(report.Detail{Text: "Error: " + o.Err.Error()})
		}
		for _, re := range o.Rejected {
			x.agg.Emit(report.Detail{Text: "- Record: " + re.Record})
			x.agg.Emit(report.Detail{Text: "Error: " + re.Err.Error()})
		}
	}
}

func (x *run) postLoad() error {
	if err := x.ctx.Err(); err != nil {
		return err
	}
	x.agg.Emit(report.StageStarted{Name: "Post-load"})
	n, err := UpdateVehicleTotals(x.db)
	if err != nil {
		return fmt.Errorf("post-load: %w", err)
	}
	x.res.VehicleTotals = n
	x.agg.Infof("Vehicle totals updated for %d accidents", n)
	x.tick()
	return nil
}
