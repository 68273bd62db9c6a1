// Package pipeline loads tasks from the transport, checks the payload shape
// and turns raw records into presentation tasks.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	dom "taskboard/internal/domain"
)

const (
	MsgLoadFailed    = "Failed to load tasks from server."
	MsgInvalidFormat = "Invalid response format: expected array of tasks."
)

// ErrInvalidFormat is returned by Decode when a payload is not an array of
// task records.
var ErrInvalidFormat = errors.New("invalid task payload")

// Fetcher is the part of the transport client the pipeline needs.
type Fetcher interface {
	FetchAll(ctx context.Context) (json.RawMessage, error)
}

// Result is the outcome of LoadTasks. Error is empty on success; Tasks is
// never nil.
type Result struct {
	Tasks []dom.PresentationTask `json:"tasks"`
	Error string                 `json:"error"`
}

// OK reports whether the load succeeded.
func (r Result) OK() bool { return r.Error == "" }

type Pipeline struct {
	fetcher Fetcher
	log     *slog.Logger
}

func New(fetcher Fetcher, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{fetcher: fetcher, log: logger}
}

// LoadTasks fetches, validates and maps tasks. Every transport failure
// collapses to MsgLoadFailed; the cause is only logged.
func (p *Pipeline) LoadTasks(ctx context.Context) Result {
	raw, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		p.log.ErrorContext(ctx, "load tasks", "error", err)
		return Result{Tasks: []dom.PresentationTask{}, Error: MsgLoadFailed}
	}
	records, err := Decode(raw)
	if err != nil {
		p.log.WarnContext(ctx, "load tasks", "error", err)
		return Result{Tasks: []dom.PresentationTask{}, Error: MsgInvalidFormat}
	}
	tasks := make([]dom.PresentationTask, len(records))
	for i, rec := range records {
		tasks[i] = Present(rec)
	}
	return Result{Tasks: tasks}
}

// Decode accepts only a JSON array whose elements are task objects.
// null, objects, numbers and strings are rejected with ErrInvalidFormat.
func Decode(raw json.RawMessage) ([]dom.RawRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, kindOf(trimmed))
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	records := make([]dom.RawRecord, len(elems))
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is %s", ErrInvalidFormat, i, kindOf(elem))
		}
		if err := json.Unmarshal(elem, &records[i]); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidFormat, i, err)
		}
	}
	return records, nil
}

func kindOf(v []byte) string {
	if len(v) == 0 {
		return "empty"
	}
	switch v[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

// Present maps a raw record to its presentation form.
func Present(rec dom.RawRecord) dom.PresentationTask {
	t := dom.PresentationTask{ID: rec.ID, Display: rec.Name, Status: dom.StatusPending}
	if rec.Completed {
		t.Display += dom.DoneSuffix
		t.Status = dom.StatusSuccess
	}
	return t
}

// FilterTasksByStatus returns a new slice with the tasks whose status matches
// wantCompleted. The input is not modified.
func FilterTasksByStatus(tasks []dom.PresentationTask, wantCompleted bool) []dom.PresentationTask {
	want := dom.StatusPending
	if wantCompleted {
		want = dom.StatusSuccess
	}
	out := make([]dom.PresentationTask, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == want {
			out = append(out, t)
		}
	}
	return out
}
