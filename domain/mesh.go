package domain

import (
	"errors"
	"fmt"
	"sort"
)

var ErrNodeNotFound = errors.New("node not found")

// Domain resolves node tags for elements at SetDomain time
type Domain interface {
	Node(tag int) (Node, error)
}

// Mesh is an in-memory node store that assigns equation numbers
type Mesh struct {
	nodes map[int]*BasicNode
	tags  []int
}

func NewMesh() *Mesh {
	return &Mesh{nodes: make(map[int]*BasicNode)}
}

func (m *Mesh) AddNode(n *BasicNode) error {
	if _, present := m.nodes[n.Tag()]; present {
		return fmt.Errorf("node %d already present in mesh", n.Tag())
	}
	m.nodes[n.Tag()] = n
	m.tags = append(m.tags, n.Tag())
	sort.Ints(m.tags)
	return nil
}

func (m *Mesh) Node(tag int) (Node, error) {
	n, present := m.nodes[tag]
	if !present {
		return nil, fmt.Errorf("%w: tag %d", ErrNodeNotFound, tag)
	}
	return n, nil
}

func (m *Mesh) BasicNode(tag int) (*BasicNode, error) {
	n, present := m.nodes[tag]
	if !present {
		return nil, fmt.Errorf("%w: tag %d", ErrNodeNotFound, tag)
	}
	return n, nil
}

// Tags returns the node tags in ascending order
func (m *Mesh) Tags() []int { return m.tags }

func (m *Mesh) NumNodes() int { return len(m.tags) }

// EquationNumber returns the global row of dof on the node with the given
// tag, nodes numbered in ascending tag order
func (m *Mesh) EquationNumber(tag, dof int) (eq int, err error) {
	i := sort.SearchInts(m.tags, tag)
	if i == len(m.tags) || m.tags[i] != tag {
		err = fmt.Errorf("%w: tag %d", ErrNodeNotFound, tag)
		return
	}
	eq = i*NodeDOF + dof
	return
}

func (m *Mesh) CommitState() {
	for _, n := range m.nodes {
		n.CommitState()
	}
}

func (m *Mesh) RevertToLastCommit() {
	for _, n := range m.nodes {
		n.RevertToLastCommit()
	}
}
