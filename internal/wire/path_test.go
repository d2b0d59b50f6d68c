package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextPathNode(t *testing.T) {
	node, rest, ok := NextPathNode("/foo/bar/baz.txt")
	require.True(t, ok)
	require.Equal(t, "foo", node)

	node, rest, ok = NextPathNode(rest)
	require.True(t, ok)
	require.Equal(t, "bar", node)

	node, rest, ok = NextPathNode(rest)
	require.True(t, ok)
	require.Equal(t, "baz.txt", node)

	_, _, ok = NextPathNode(rest)
	require.False(t, ok)
}

func TestNextPathNodeBackslashSeparator(t *testing.T) {
	node, rest, ok := NextPathNode(`a\b\c`)
	require.True(t, ok)
	require.Equal(t, "a", node)
	node, _, ok = NextPathNode(rest)
	require.True(t, ok)
	require.Equal(t, "b", node)
}

func TestNextPathNodeEmpty(t *testing.T) {
	_, _, ok := NextPathNode("")
	require.False(t, ok)
	_, _, ok = NextPathNode("///")
	require.False(t, ok)
}

func TestSplitFilenameFromPath(t *testing.T) {
	parent, filename := SplitFilenameFromPath("a/b/c.txt")
	require.Equal(t, "a/b/", parent)
	require.Equal(t, "c.txt", filename)

	parent, filename = SplitFilenameFromPath("c.txt")
	require.Equal(t, "", parent)
	require.Equal(t, "c.txt", filename)

	parent, filename = SplitFilenameFromPath("")
	require.Equal(t, "", parent)
	require.Equal(t, "", filename)
}

func TestEqualNodeNameCaseInsensitive(t *testing.T) {
	require.True(t, EqualNodeName("Foo.TXT", "foo.txt"))
	require.False(t, EqualNodeName("Foo", "Foobar"))
}

func TestCompareNodeNameOrdersAscending(t *testing.T) {
	require.Less(t, CompareNodeName("apple", "Banana"), 0)
	require.Greater(t, CompareNodeName("Zebra", "apple"), 0)
	require.Equal(t, 0, CompareNodeName("Same", "same"))
}
