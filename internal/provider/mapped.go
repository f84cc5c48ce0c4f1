// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package provider

import "fmt"

type mapped struct {
	upstream Provider
	fn       func(any) any
	captured []Provider
}

func (m *mapped) Present() bool {
	return m.upstream.Present()
}

func (m *mapped) Get() (any, error) {
	v, err := m.upstream.Get()
	if err != nil {
		return nil, err
	}
	return m.fn(v), nil
}

func (m *mapped) Visit(fn func(Provider) bool) {
	if !fn(m) {
		return
	}
	m.upstream.Visit(fn)
	visitCaptured(m.captured, fn)
}

func (m *mapped) String() string {
	return fmt.Sprintf("Mapped(%v)", m.upstream)
}

type flatMapped struct {
	upstream Provider
	fn       func(any) (Provider, error)
	captured []Provider
}

func (m *flatMapped) Present() bool {
	v, ok := OrNone(m.upstream)
	if !ok {
		return false
	}
	next, err := m.fn(v)
	if err != nil {
		return false
	}
	return next.Present()
}

func (m *flatMapped) Get() (any, error) {
	v, err := m.upstream.Get()
	if err != nil {
		return nil, err
	}
	next, err := m.fn(v)
	if err != nil {
		return nil, err
	}
	return next.Get()
}

func (m *flatMapped) Visit(fn func(Provider) bool) {
	if !fn(m) {
		return
	}
	m.upstream.Visit(fn)
	visitCaptured(m.captured, fn)
}

func (m *flatMapped) String() string {
	return fmt.Sprintf("FlatMapped(%v)", m.upstream)
}
