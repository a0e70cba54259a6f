// Package talent implements the player's talent tree.
package talent

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/arpg/internal/game/stat"
)

// Node is one talent. Parent is empty for the root.
type Node struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Stats       map[stat.Key]float64 `json:"stats"`
	Parent      string               `json:"parent,omitempty"`
	Unlocked    bool                 `json:"unlocked"`
	Claimed     bool                 `json:"claimed"`
}

// Tree is a talent tree stored as a flat, parent-linked node list.
//
// Invariant: Nodes[0] is the root; a node is only Claimed if it is Unlocked.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

type grant struct {
	name string
	key  stat.Key
}

var (
	strengthGrant     = grant{"Strength", stat.Strength}
	dexterityGrant    = grant{"Dexterity", stat.Dexterity}
	intelligenceGrant = grant{"Intelligence", stat.Intelligence}
	attributeGrants   = []grant{strengthGrant, dexterityGrant, intelligenceGrant}
)

// PointsPerNode is the stat value every node grants.
const PointsPerNode = 5

func newNode(g grant, parent string) Node {
	return Node{
		ID:          uuid.New().String(),
		Name:        g.name,
		Description: "+5 to " + g.name,
		Stats:       map[stat.Key]float64{g.key: PointsPerNode},
		Parent:      parent,
	}
}

// New builds the default tree: an unlocked Vitality root with three attribute
// branches, each of which has one child per attribute.
//
// Postcondition: len(result.Nodes) == 13; only the root is unlocked.
func New() *Tree {
	root := newNode(grant{"Vitality", stat.FlatMaxLife}, "")
	root.Description = "+5 to Maximum Life"
	root.Unlocked = true
	t := &Tree{Nodes: []Node{root}}
	for _, g := range attributeGrants {
		branch := newNode(g, root.ID)
		t.Nodes = append(t.Nodes, branch)
		for _, leaf := range attributeGrants {
			t.Nodes = append(t.Nodes, newNode(leaf, branch.ID))
		}
	}
	return t
}

// Node returns the node with id.
func (t *Tree) Node(id string) (*Node, bool) {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i], true
		}
	}
	return nil, false
}

// Children returns the direct children of id.
func (t *Tree) Children(id string) []*Node {
	var out []*Node
	for i := range t.Nodes {
		if t.Nodes[i].Parent == id {
			out = append(out, &t.Nodes[i])
		}
	}
	return out
}

// Claim marks the node claimed and unlocks its children.
//
// Postcondition: returns the node's stat grant and true on success; returns
// nil and false, leaving the tree unchanged, when the node is unknown, locked,
// or already claimed.
func (t *Tree) Claim(id string) (map[stat.Key]float64, bool) {
	n, ok := t.Node(id)
	if !ok || !n.Unlocked || n.Claimed {
		return nil, false
	}
	n.Claimed = true
	for _, c := range t.Children(id) {
		c.Unlocked = true
	}
	out := make(map[stat.Key]float64, len(n.Stats))
	for k, v := range n.Stats {
		out[k] = v
	}
	return out, true
}

// Claimed returns the summed stats of every claimed node.
func (t *Tree) Claimed() map[stat.Key]float64 {
	out := map[stat.Key]float64{}
	for _, n := range t.Nodes {
		if n.Claimed {
			for k, v := range n.Stats {
				out[k] += v
			}
		}
	}
	return out
}
