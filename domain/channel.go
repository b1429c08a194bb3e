package domain

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
)

var ErrChannel = errors.New("channel failure")

// Channel moves fixed-order vector and matrix frames between an object and
// its persisted copy
type Channel interface {
	SendVector(tag int, v *mat.VecDense) error
	RecvVector(tag int, v *mat.VecDense) error
	SendMatrix(tag int, m *mat.Dense) error
	RecvMatrix(tag int, m *mat.Dense) error
}

type frameKind uint8

const (
	vectorFrame frameKind = iota
	matrixFrame
)

type frame struct {
	tag     int
	kind    frameKind
	payload []byte
}

// MemoryChannel is a FIFO of gonum binary encoded frames
type MemoryChannel struct {
	mu     sync.Mutex
	frames []frame
}

func NewMemoryChannel() *MemoryChannel { return &MemoryChannel{} }

func (c *MemoryChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *MemoryChannel) SendVector(tag int, v *mat.VecDense) (err error) {
	var payload []byte
	if payload, err = v.MarshalBinary(); err != nil {
		return fmt.Errorf("%w: encoding vector frame %d: %v", ErrChannel, tag, err)
	}
	c.push(frame{tag: tag, kind: vectorFrame, payload: payload})
	return
}

func (c *MemoryChannel) SendMatrix(tag int, m *mat.Dense) (err error) {
	var payload []byte
	if payload, err = m.MarshalBinary(); err != nil {
		return fmt.Errorf("%w: encoding matrix frame %d: %v", ErrChannel, tag, err)
	}
	c.push(frame{tag: tag, kind: matrixFrame, payload: payload})
	return
}

// RecvVector decodes the next frame into v, which must already have the
// frame's length
func (c *MemoryChannel) RecvVector(tag int, v *mat.VecDense) (err error) {
	var (
		f   frame
		tmp mat.VecDense
	)
	if f, err = c.pop(tag, vectorFrame); err != nil {
		return
	}
	if err = tmp.UnmarshalBinary(f.payload); err != nil {
		return fmt.Errorf("%w: decoding vector frame %d: %v", ErrChannel, tag, err)
	}
	if tmp.Len() != v.Len() {
		return fmt.Errorf("%w: vector frame %d has length %d, expected %d", ErrChannel, tag, tmp.Len(), v.Len())
	}
	v.CopyVec(&tmp)
	return
}

func (c *MemoryChannel) RecvMatrix(tag int, m *mat.Dense) (err error) {
	var (
		f   frame
		tmp mat.Dense
	)
	if f, err = c.pop(tag, matrixFrame); err != nil {
		return
	}
	if err = tmp.UnmarshalBinary(f.payload); err != nil {
		return fmt.Errorf("%w: decoding matrix frame %d: %v", ErrChannel, tag, err)
	}
	nr, nc := tmp.Dims()
	if r, cc := m.Dims(); r != nr || cc != nc {
		return fmt.Errorf("%w: matrix frame %d is %d x %d, expected %d x %d", ErrChannel, tag, nr, nc, r, cc)
	}
	m.Copy(&tmp)
	return
}

func (c *MemoryChannel) push(f frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
}

func (c *MemoryChannel) pop(tag int, kind frameKind) (f frame, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		err = fmt.Errorf("%w: no frame available for tag %d", ErrChannel, tag)
		return
	}
	f = c.frames[0]
	if f.tag != tag || f.kind != kind {
		err = fmt.Errorf("%w: expected frame %d, found frame %d", ErrChannel, tag, f.tag)
		return
	}
	c.frames = c.frames[1:]
	return
}
