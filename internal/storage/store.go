package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/noisefield/internal/loop"
)

const (
	metadataFile   = "metadata.json"
	frameTimesFile = "frames.csv"
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

// SessionInfo is what the caller knows about a session that the loop does not.
type SessionInfo struct {
	Sampler       string
	Preset        string
	Seed          int64
	TargetFPS     int
	CacheCapacity int
	Precision     int
}

type SessionMetadata struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	Sampler     string      `json:"sampler"`
	Preset      string      `json:"preset,omitempty"`
	Seed        int64       `json:"seed"`
	TargetFPS   int         `json:"target_fps"`
	Capacity    int         `json:"cache_capacity"`
	Precision   int         `json:"precision"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Frames      uint64      `json:"frames"`
	ElapsedSecs float64     `json:"elapsed_seconds"`
	FPS         float64     `json:"fps"`
	Cache       CacheRecord `json:"cache"`
	Min         float64     `json:"min"`
	Max         float64     `json:"max"`
	Velocity    [3]float64  `json:"velocity"`
	Origin      [3]float64  `json:"origin"`
}

type CacheRecord struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	Entries   int     `json:"entries"`
	HitRatio  float64 `json:"hit_ratio"`
}

// NewMetadata flattens a loop summary for storage.
func NewMetadata(info SessionInfo, sum loop.Summary) SessionMetadata {
	return SessionMetadata{
		Timestamp:   time.Now(),
		Sampler:     info.Sampler,
		Preset:      info.Preset,
		Seed:        info.Seed,
		TargetFPS:   info.TargetFPS,
		Capacity:    info.CacheCapacity,
		Precision:   info.Precision,
		Width:       sum.Viewport.Width,
		Height:      sum.Viewport.Height,
		Frames:      sum.Frames,
		ElapsedSecs: sum.Elapsed.Seconds(),
		FPS:         sum.FPS,
		Cache: CacheRecord{
			Hits:      sum.Cache.Hits,
			Misses:    sum.Cache.Misses,
			Evictions: sum.Cache.Evictions,
			Entries:   sum.Cache.Len,
			HitRatio:  sum.Cache.HitRatio(),
		},
		Min:      sum.Min,
		Max:      sum.Max,
		Velocity: [3]float64{sum.Velocity.X, sum.Velocity.Y, sum.Velocity.Z},
		Origin:   [3]float64{sum.Origin.X, sum.Origin.Y, sum.Origin.Z},
	}
}

// Save writes the session summary and its frame times, returning the new id.
func (s *Store) Save(info SessionInfo, sum loop.Summary) (string, error) {
	meta := NewMetadata(info, sum)

	id, dir, err := s.newSessionDir(info.Sampler, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = id

	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrameTimes(filepath.Join(dir, frameTimesFile), sum.FrameTimes); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) newSessionDir(prefix string, ts time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", prefix, ts.Unix())
	id := base
	for i := 1; ; i++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrameTimes(path string, times []time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "duration_ms"}); err != nil {
		return err
	}
	for i, d := range times {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored sessions, newest first. Unreadable entries are skipped.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	sessions := make([]SessionMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		sessions = append(sessions, *meta)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions, nil
}

func (s *Store) Load(id string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadFrameTimes(id string) ([]time.Duration, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, frameTimesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []time.Duration{}, nil
	}

	times := make([]time.Duration, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		ms, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		times = append(times, time.Duration(ms*float64(time.Millisecond)))
	}
	return times, nil
}
