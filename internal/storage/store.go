package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/turb2d/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	scalarsFile  = "scalars.csv"
	snapshotsDir = "snapshots"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

func (s *Store) runDir(id string) string { return filepath.Join(s.baseDir, id) }

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Resolution  int                `json:"resolution"`
	Length      float64            `json:"length"`
	Epsilon     float64            `json:"epsilon"`
	Kf          float64            `json:"kf"`
	Kfw         float64            `json:"kfw"`
	Viscosity   float64            `json:"viscosity"`
	Friction    float64            `json:"friction"`
	Timestepper string             `json:"timestepper"`
	StopTime    float64            `json:"stop_sim_time"`
	Iterations  int                `json:"iterations"`
	SimTime     float64            `json:"sim_time"`
	Status      string             `json:"status"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Run is an open run directory. It implements dynamo.Sink: scalar samples
// are appended to scalars.csv and field samples are stored in the snapshot
// database. A Run is not safe for concurrent use.
type Run struct {
	meta RunMetadata
	dir  string

	csvFile *os.File
	csv     *csv.Writer
	snaps   *Snapshots
}

// Create allocates a new run directory and opens its outputs.
func (s *Store) Create(meta RunMetadata) (*Run, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("run_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Status = "running"

	dir := s.runDir(meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(dir, scalarsFile))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "iteration", "name", "value"}); err != nil {
		f.Close()
		return nil, err
	}

	snaps, err := OpenSnapshots(filepath.Join(dir, snapshotsDir))
	if err != nil {
		f.Close()
		return nil, err
	}

	r := &Run{meta: meta, dir: dir, csvFile: f, csv: w, snaps: snaps}
	if err := r.writeMetadata(); err != nil {
		r.abort()
		return nil, err
	}
	return r, nil
}

func (r *Run) ID() string  { return r.meta.ID }
func (r *Run) Dir() string { return r.dir }

func (r *Run) Record(s dynamo.Sample) error {
	if s.IsField() {
		return r.snaps.Put(s)
	}
	return r.csv.Write([]string{
		strconv.FormatFloat(s.Time, 'g', -1, 64),
		strconv.Itoa(s.Iteration),
		s.Name,
		strconv.FormatFloat(s.Scalar, 'g', -1, 64),
	})
}

// Close flushes all outputs and records the outcome of the run. A nil
// result marks the run as failed.
func (r *Run) Close(result *dynamo.Result, runErr error) error {
	r.meta.Status = "completed"
	if runErr != nil {
		r.meta.Status = "failed: " + runErr.Error()
	}
	if result != nil {
		r.meta.Iterations = result.Iterations
		r.meta.SimTime = result.SimTime
		r.meta.Metrics = result.Metrics
	}

	r.csv.Flush()
	errs := []error{r.csv.Error(), r.csvFile.Close(), r.snaps.Close(), r.writeMetadata()}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Run) abort() {
	r.csvFile.Close()
	r.snaps.Close()
}

func (r *Run) writeMetadata() error {
	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r.meta)
}

// List returns every run with readable metadata, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Series is the time history of one scalar diagnostic.
type Series struct {
	Time      []float64 `json:"time"`
	Iteration []int     `json:"iteration"`
	Value     []float64 `json:"value"`
}

func (s *Series) Len() int { return len(s.Time) }

// LoadScalars reads scalars.csv and groups it by diagnostic name.
func (s *Store) LoadScalars(runID string) (map[string]*Series, error) {
	file, err := os.Open(filepath.Join(s.runDir(runID), scalarsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Series)
	for i, record := range records {
		if i == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", scalarsFile, i+1, err)
		}
		it, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", scalarsFile, i+1, err)
		}
		v, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", scalarsFile, i+1, err)
		}

		ser, ok := out[record[2]]
		if !ok {
			ser = &Series{}
			out[record[2]] = ser
		}
		ser.Time = append(ser.Time, t)
		ser.Iteration = append(ser.Iteration, it)
		ser.Value = append(ser.Value, v)
	}
	return out, nil
}

// OpenSnapshots opens the snapshot database of a finished run.
func (s *Store) OpenSnapshots(runID string) (*Snapshots, error) {
	path := filepath.Join(s.runDir(runID), snapshotsDir)
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return OpenSnapshots(path)
}
