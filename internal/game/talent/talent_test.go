package talent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arpg/internal/game/stat"
	"github.com/cory-johannsen/arpg/internal/game/talent"
)

func TestNew_Shape(t *testing.T) {
	tr := talent.New()
	require.Len(t, tr.Nodes, 13)
	root := tr.Nodes[0]
	assert.True(t, root.Unlocked)
	assert.Empty(t, root.Parent)
	assert.Len(t, tr.Children(root.ID), 3)
	for _, n := range tr.Nodes[1:] {
		assert.False(t, n.Unlocked)
	}
}

func TestClaim_UnlocksChildren(t *testing.T) {
	tr := talent.New()
	root := tr.Nodes[0]

	stats, ok := tr.Claim(root.ID)
	require.True(t, ok)
	assert.Equal(t, map[stat.Key]float64{stat.FlatMaxLife: 5}, stats)
	for _, c := range tr.Children(root.ID) {
		assert.True(t, c.Unlocked)
	}

	_, ok = tr.Claim(root.ID)
	assert.False(t, ok, "a node can only be claimed once")
}

func TestClaim_LockedNode(t *testing.T) {
	tr := talent.New()
	branch := tr.Children(tr.Nodes[0].ID)[0]
	leaf := tr.Children(branch.ID)[0]
	_, ok := tr.Claim(leaf.ID)
	assert.False(t, ok)
	assert.False(t, leaf.Claimed)
}

func TestClaim_UnknownNode(t *testing.T) {
	_, ok := talent.New().Claim("missing")
	assert.False(t, ok)
}

func TestClaimed_SumsGrants(t *testing.T) {
	tr := talent.New()
	root := tr.Nodes[0]
	_, _ = tr.Claim(root.ID)
	branch := tr.Children(root.ID)[0]
	_, _ = tr.Claim(branch.ID)
	got := tr.Claimed()
	assert.Equal(t, 5.0, got[stat.FlatMaxLife])
	assert.Equal(t, 5.0, got[stat.Strength])
}
