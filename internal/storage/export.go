package storage

import (
	"encoding/json"
	"io"
	"time"
)

type ExportData struct {
	SessionMetadata
	FrameTimesMs []float64 `json:"frame_times_ms"`
}

// Export writes a stored session and its frame times as indented JSON.
func (s *Store) Export(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	times, err := s.LoadFrameTimes(id)
	if err != nil {
		return err
	}

	data := ExportData{
		SessionMetadata: *meta,
		FrameTimesMs:    make([]float64, len(times)),
	}
	for i, d := range times {
		data.FrameTimesMs[i] = float64(d) / float64(time.Millisecond)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
