package asssearch

import "strings"

// trieNode is one node of a compressed trie (radix tree) over the index's
// lowercased word keys, giving Search a prefix probe without a linear scan
// of the vocabulary (spec.md §4.5's "optional FST-like set"; no FST/vellum
// crate was found anywhere in the retrieved dependency pack, so this is a
// hand-rolled stand-in, kept deliberately small).
type trieNode struct {
	edge     string
	children map[byte]*trieNode
	terminal bool
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[byte]*trieNode)}
}

// buildTrie constructs a fresh trie over keys. The index rebuilds this
// structure wholesale after every Update rather than maintaining it
// incrementally: the primary word-offset map is what the incremental
// maintenance algorithm optimizes, and rebuilding a vocabulary-sized trie
// is cheap relative to re-tokenizing document text.
func buildTrie(keys []string) *trieNode {
	root := newTrieNode()
	for _, k := range keys {
		root.insert(k)
	}
	return root
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func (n *trieNode) insert(key string) {
	if key == "" {
		n.terminal = true
		return
	}
	c := key[0]
	child, ok := n.children[c]
	if !ok {
		n.children[c] = &trieNode{edge: key, terminal: true, children: make(map[byte]*trieNode)}
		return
	}
	i := commonPrefixLen(key, child.edge)
	switch {
	case i == len(child.edge) && i == len(key):
		child.terminal = true
	case i == len(child.edge):
		child.insert(key[i:])
	default:
		mid := &trieNode{edge: child.edge[:i], children: make(map[byte]*trieNode)}
		child.edge = child.edge[i:]
		mid.children[child.edge[0]] = child
		if i == len(key) {
			mid.terminal = true
		} else {
			mid.children[key[i]] = &trieNode{edge: key[i:], terminal: true, children: make(map[byte]*trieNode)}
		}
		n.children[c] = mid
	}
}

func (n *trieNode) collect(prefix string, out *[]string) {
	if n.terminal {
		*out = append(*out, prefix)
	}
	for _, ch := range n.children {
		ch.collect(prefix+ch.edge, out)
	}
}

// prefixKeys returns every key in the trie starting with prefix, in no
// particular order (the caller sorts by occurrence offset, not by key).
func (root *trieNode) prefixKeys(prefix string) []string {
	node := root
	remaining := prefix
	accumulated := ""
	for remaining != "" {
		c := remaining[0]
		child, ok := node.children[c]
		if !ok {
			return nil
		}
		n := len(child.edge)
		if n > len(remaining) {
			if strings.HasPrefix(child.edge, remaining) {
				var out []string
				child.collect(accumulated+child.edge, &out)
				return out
			}
			return nil
		}
		if child.edge != remaining[:n] {
			return nil
		}
		accumulated += child.edge
		remaining = remaining[n:]
		node = child
	}
	var out []string
	node.collect(accumulated, &out)
	return out
}
