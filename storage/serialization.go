// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/albumsearch/core"
)

// Values are encoded field by field with mus-go primitives, in declaration
// order. Timestamps are stored as UnixMicro and vectors as a length followed
// by raw float32 values. Every type is written by one function that runs
// twice: once against a sizer to allocate, once against an encoder.

type fieldWriter interface {
	str(v string)
	int(v int)
	u64(v uint64)
	i64(v int64)
	vec(v []float32)
}

type sizer struct{ size int }

func (s *sizer) str(v string) { s.size += ord.String.Size(v) }
func (s *sizer) int(v int)    { s.size += varint.Int.Size(v) }
func (s *sizer) u64(v uint64) { s.size += varint.Uint64.Size(v) }
func (s *sizer) i64(v int64)  { s.size += varint.Int64.Size(v) }
func (s *sizer) vec(v []float32) {
	s.size += varint.Int.Size(len(v))
	for _, f := range v {
		s.size += raw.Float32.Size(f)
	}
}

type encoder struct {
	bs []byte
	n  int
}

func (e *encoder) str(v string) { e.n += ord.String.Marshal(v, e.bs[e.n:]) }
func (e *encoder) int(v int)    { e.n += varint.Int.Marshal(v, e.bs[e.n:]) }
func (e *encoder) u64(v uint64) { e.n += varint.Uint64.Marshal(v, e.bs[e.n:]) }
func (e *encoder) i64(v int64)  { e.n += varint.Int64.Marshal(v, e.bs[e.n:]) }
func (e *encoder) vec(v []float32) {
	e.n += varint.Int.Marshal(len(v), e.bs[e.n:])
	for _, f := range v {
		e.n += raw.Float32.Marshal(f, e.bs[e.n:])
	}
}

func marshal[T any](v *T, write func(fieldWriter, *T)) []byte {
	var s sizer
	write(&s, v)
	e := encoder{bs: make([]byte, s.size)}
	write(&e, v)
	return e.bs
}

// decoder reads fields in order and keeps the first error it hits.
type decoder struct {
	bs  []byte
	err error
}

func (d *decoder) advance(n int, err error) bool {
	if err != nil {
		d.err = fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		return false
	}
	d.bs = d.bs[n:]
	return true
}

func (d *decoder) str() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return ""
	}
	return v
}

func (d *decoder) int() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) u64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) i64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) time() time.Time {
	return time.UnixMicro(d.i64()).UTC()
}

func (d *decoder) vec() []float32 {
	length := d.int()
	if d.err != nil {
		return nil
	}
	if length < 0 || length*4 > len(d.bs) {
		d.err = fmt.Errorf("%w: vector of %d values in %d bytes", ErrTruncatedData, length, len(d.bs))
		return nil
	}
	if length == 0 {
		return nil
	}
	v := make([]float32, length)
	for i := range v {
		f, n, err := raw.Float32.Unmarshal(d.bs)
		if !d.advance(n, err) {
			return nil
		}
		v[i] = f
	}
	return v
}

func (d *decoder) finish() error {
	if d.err == nil && len(d.bs) != 0 {
		d.err = fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(d.bs))
	}
	return d.err
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	d := decoder{bs: data}
	id := core.ID(d.u64())
	return id, d.finish()
}

func writeCorpusEntry(w fieldWriter, e *core.CorpusEntry) {
	w.str(e.Id)
	w.str(e.Title)
	w.str(e.Text)
	w.str(e.Source)
	w.str(e.Subject)
	w.str(e.Plane)
	w.vec(e.Vector)
}

// MarshalCorpusEntry serializes a CorpusEntry to bytes.
func MarshalCorpusEntry(entry *core.CorpusEntry) []byte {
	return marshal(entry, writeCorpusEntry)
}

// UnmarshalCorpusEntry deserializes a CorpusEntry from bytes.
func UnmarshalCorpusEntry(data []byte) (*core.CorpusEntry, error) {
	d := decoder{bs: data}
	entry := &core.CorpusEntry{
		Id:      d.str(),
		Title:   d.str(),
		Text:    d.str(),
		Source:  d.str(),
		Subject: d.str(),
		Plane:   d.str(),
		Vector:  d.vec(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return entry, nil
}

func writeDocument(w fieldWriter, doc *core.Document) {
	w.str(doc.Id)
	w.str(doc.Title)
	w.str(doc.Filename)
	w.int(doc.Pages)
	w.u64(uint64(doc.ContentHash))
	w.i64(doc.CreatedAt.UnixMicro())
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	return marshal(doc, writeDocument)
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	d := decoder{bs: data}
	doc := &core.Document{
		Id:          d.str(),
		Title:       d.str(),
		Filename:    d.str(),
		Pages:       d.int(),
		ContentHash: core.ID(d.u64()),
		CreatedAt:   d.time(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return doc, nil
}

func writeDocChunk(w fieldWriter, c *core.DocChunk) {
	w.str(c.DocId)
	w.int(c.Page)
	w.int(c.Seq)
	w.str(c.Heading)
	w.str(c.Text)
	w.str(c.Subject)
	w.str(c.Plane)
	w.vec(c.Vector)
}

// MarshalDocChunk serializes a DocChunk to bytes.
func MarshalDocChunk(chunk *core.DocChunk) []byte {
	return marshal(chunk, writeDocChunk)
}

// UnmarshalDocChunk deserializes a DocChunk from bytes.
func UnmarshalDocChunk(data []byte) (*core.DocChunk, error) {
	d := decoder{bs: data}
	chunk := &core.DocChunk{
		DocId:   d.str(),
		Page:    d.int(),
		Seq:     d.int(),
		Heading: d.str(),
		Text:    d.str(),
		Subject: d.str(),
		Plane:   d.str(),
		Vector:  d.vec(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return chunk, nil
}

func writeEscalationItem(w fieldWriter, item *core.EscalationItem) {
	w.u64(uint64(item.Id))
	w.str(item.Query)
	w.str(item.Subject)
	w.str(item.Plane)
	w.i64(item.CreatedAt.UnixMicro())
	w.str(string(item.Status))
}

// MarshalEscalationItem serializes an EscalationItem to bytes.
func MarshalEscalationItem(item *core.EscalationItem) []byte {
	return marshal(item, writeEscalationItem)
}

// UnmarshalEscalationItem deserializes an EscalationItem from bytes.
func UnmarshalEscalationItem(data []byte) (*core.EscalationItem, error) {
	d := decoder{bs: data}
	item := &core.EscalationItem{
		Id:        core.ID(d.u64()),
		Query:     d.str(),
		Subject:   d.str(),
		Plane:     d.str(),
		CreatedAt: d.time(),
		Status:    core.EscalationStatus(d.str()),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return item, nil
}

func writeTrainerReply(w fieldWriter, reply *core.TrainerReply) {
	w.u64(uint64(reply.Id))
	w.u64(uint64(reply.QueueId))
	w.str(reply.Text)
	w.i64(reply.CreatedAt.UnixMicro())
}

// MarshalTrainerReply serializes a TrainerReply to bytes.
func MarshalTrainerReply(reply *core.TrainerReply) []byte {
	return marshal(reply, writeTrainerReply)
}

// UnmarshalTrainerReply deserializes a TrainerReply from bytes.
func UnmarshalTrainerReply(data []byte) (*core.TrainerReply, error) {
	d := decoder{bs: data}
	reply := &core.TrainerReply{
		Id:        core.ID(d.u64()),
		QueueId:   core.ID(d.u64()),
		Text:      d.str(),
		CreatedAt: d.time(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return reply, nil
}
