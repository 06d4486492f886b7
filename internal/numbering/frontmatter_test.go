package numbering

import (
	"testing"

	"github.com/dgallion1/docnum/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFrontMatter(value string) *doctree.Node {
	return doctree.NewRoot(
		&doctree.Node{Type: doctree.TypeYAML, Value: value},
		doctree.NewHeading(1, doctree.NewText("test")),
	)
}

func TestExtractGroup_RemovesField(t *testing.T) {
	root := withFrontMatter("title: tesst\nnumGroupName: simple\ntype: idea")
	group, err := extractGroup(root, DefaultGroupField)
	require.NoError(t, err)
	assert.Equal(t, "simple", group)
	assert.Equal(t, "title: tesst\ntype: idea", root.Children[0].Value)
}

func TestExtractGroup_CustomFieldAndMissingField(t *testing.T) {
	root := withFrontMatter("title: t\ngrp: section")
	group, err := extractGroup(root, "grp")
	require.NoError(t, err)
	assert.Equal(t, "section", group)
	assert.Equal(t, "title: t", root.Children[0].Value)

	root = withFrontMatter("title: t")
	group, err = extractGroup(root, DefaultGroupField)
	require.NoError(t, err)
	assert.Equal(t, "", group)
	assert.Equal(t, "title: t", root.Children[0].Value)
}

func TestExtractGroup_OnlyField(t *testing.T) {
	root := withFrontMatter("numGroupName: simple")
	group, err := extractGroup(root, DefaultGroupField)
	require.NoError(t, err)
	assert.Equal(t, "simple", group)
	assert.Equal(t, "", root.Children[0].Value)
}

func TestExtractGroup_MalformedLeftUntouched(t *testing.T) {
	raw := "title: [unclosed\nnumGroupName: simple"
	root := withFrontMatter(raw)
	group, err := extractGroup(root, DefaultGroupField)
	assert.Error(t, err)
	assert.Equal(t, "", group)
	assert.Equal(t, raw, root.Children[0].Value)

	root = withFrontMatter("- a\n- b")
	group, err = extractGroup(root, DefaultGroupField)
	require.NoError(t, err)
	assert.Equal(t, "", group)
	assert.Equal(t, "- a\n- b", root.Children[0].Value)
}

func TestExtractGroup_NoFrontMatter(t *testing.T) {
	group, err := extractGroup(doctree.NewRoot(), DefaultGroupField)
	require.NoError(t, err)
	assert.Equal(t, "", group)
}
