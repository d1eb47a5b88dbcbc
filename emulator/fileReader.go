package main

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	trigger "github.com/supernemo/trigger_go/pkg"
)

// FileReader streams events from a file of concatenated JSON objects, one
// event per object.
type FileReader struct {
	decoder *json.Decoder
	count   int
}

func NewFileReader(r io.Reader) *FileReader {
	return &FileReader{decoder: json.NewDecoder(r)}
}

// getNextEvent returns io.EOF once every event has been read.
func (f *FileReader) getNextEvent() (trigger.EventType, error) {
	var event trigger.EventType
	err := f.decoder.Decode(&event)
	if err == io.EOF {
		return event, err
	}
	if err != nil {
		return event, errors.Wrapf(err, "event %d", f.count)
	}
	f.count++
	return event, nil
}
