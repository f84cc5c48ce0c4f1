// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package model

import (
	"crypto/md5" //nolint:gosec // content-addressing only, not a security boundary
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/kahmi-build/kahmi/internal/property"
)

// TaskInputs is the snapshot of a task's declared properties routed by
// marker: Files holds InputFile/InputDir values, Values holds Input
// values. It is what the Executor fingerprints to decide whether a
// task is out of date.
type TaskInputs struct {
	Files  map[string][]string `json:"files"`
	Values map[string]any      `json:"values"`
}

// Empty reports whether both Files and Values are empty — the signal
// the Executor uses to force a task dirty regardless of its stored
// fingerprint (SPEC_FULL.md's "empty-input dirtiness" decision:
// force-always).
func (ti TaskInputs) Empty() bool {
	return len(ti.Files) == 0 && len(ti.Values) == 0
}

// GetTaskInputs builds a TaskInputs by iterating t's declared
// properties in name-sorted order and reading each with OrNone,
// routing by marker. A non-string/non-[]string value on an
// InputFile/InputDir property is an error.
func (t *Task) GetTaskInputs() (TaskInputs, error) {
	inputs := TaskInputs{
		Files:  map[string][]string{},
		Values: map[string]any{},
	}

	for _, name := range property.SortedNames(t.properties) {
		prop := t.properties[name]
		value, present := orNoneHandle(prop)
		if !present {
			continue
		}

		switch {
		case prop.HasMarker(property.InputFile), prop.HasMarker(property.InputDir):
			files, err := toStringSlice(value)
			if err != nil {
				return TaskInputs{}, fmt.Errorf("property %q: %w", name, err)
			}
			inputs.Files[name] = files
		case prop.HasMarker(property.Input):
			inputs.Values[name] = value
		}
	}

	return inputs, nil
}

func orNoneHandle(p property.Handle) (any, bool) {
	v, err := p.Get()
	if err != nil {
		return nil, false
	}
	return v, true
}

func toStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list of strings, got %T", value)
	}
}

// Fingerprint computes the content-addressed digest of ti, per
// spec.md §4.3/§6: an md5 over the JSON-canonical (sorted-keys)
// serialization of {files, values}, followed by the raw bytes of every
// named file in globally sorted order. Missing files are silently
// skipped. MD5 is used purely as a non-cryptographic content-addressing
// function, not a security boundary.
func (ti TaskInputs) Fingerprint() (string, error) {
	h := md5.New() //nolint:gosec

	payload, err := canonicalJSON(ti)
	if err != nil {
		return "", err
	}
	h.Write(payload)

	var allFiles []string
	for _, files := range ti.Files {
		allFiles = append(allFiles, files...)
	}
	sort.Strings(allFiles)

	buf := make([]byte, 8*1024)
	for _, path := range allFiles {
		f, err := os.Open(path)
		if err != nil {
			continue // missing paths contribute nothing
		}
		for {
			n, readErr := f.Read(buf)
			if n > 0 {
				h.Write(buf[:n])
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				f.Close()
				return "", readErr
			}
		}
		f.Close()
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// canonicalJSON serializes ti with sorted map keys so the fingerprint
// is stable regardless of Go's randomized map iteration order.
func canonicalJSON(ti TaskInputs) ([]byte, error) {
	type sortedInputs struct {
		Files  map[string][]string `json:"files"`
		Values map[string]any      `json:"values"`
	}
	// encoding/json already sorts map[string]V keys when marshaling,
	// so this is just an explicit reminder that the guarantee matters
	// here: changing the marshal target breaks fingerprint stability.
	return json.Marshal(sortedInputs{Files: ti.Files, Values: ti.Values})
}
