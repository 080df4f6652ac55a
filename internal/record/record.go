// Package record defines the output records of a conversion and the
// append-only destination they are written to.
package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Record is one labeled section of a converted document. All five fields
// are strings; title, topic and language repeat per document, paragraph
// carries the matched section title.
type Record struct {
	Title     string `json:"title"`
	Topic     string `json:"topic"`
	Language  string `json:"language"`
	Text      string `json:"text"`
	Paragraph string `json:"paragraph"`
}

// Sink is the shared output destination for a batch run: one JSON array
// per converted document, each on its own line. The destination is a
// sequence of independent JSON documents, so consumers parse line by
// line, never the file as a whole. A Sink is written by a single
// goroutine and never read back.
type Sink struct {
	w io.Writer
	c io.Closer
}

// NewFileSink truncates (or creates) the file at path and returns a Sink
// appending to it for the duration of the batch.
func NewFileSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}
	return &Sink{w: f, c: f}, nil
}

// NewSink returns a Sink writing to w. Used by tests and the HTTP path.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Append writes one document's records as a single JSON array line.
// Documents that produced no records write nothing.
func (s *Sink) Append(recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	data = append(data, '\n')
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}
