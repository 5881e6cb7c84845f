package listing

import (
	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/ignore"
)

// Node is one entry of a walked tree.
type Node struct {
	Entry    *entry.Entry
	Children []*Node
	// Err is set when the directory could not be read. The walk goes on.
	Err error
}

// Counts holds what a walk saw.
type Counts struct {
	Files       int64
	Directories int64
	Errors      int64
}

// Walk lists the tree below root depth first. Directories are read only
// when MaxDepth allows it and the EXPLORATION rules agree.
func (l *Lister) Walk(root *entry.Entry) (*Node, Counts) {
	var counts Counts
	node := &Node{Entry: root}
	l.walk(node, 0, l.rootStack(root, &counts), &counts)
	return node, counts
}

func (l *Lister) rootStack(root *entry.Entry, counts *Counts) ignore.Stack {
	if !l.Ignore {
		return nil
	}
	return l.push(nil, root, counts)
}

func (l *Lister) push(stack ignore.Stack, dir *entry.Entry, counts *Counts) ignore.Stack {
	g, err := ignore.Load(l.Source, dir.Path)
	if err != nil {
		counts.Errors++
		if l.Log != nil {
			l.Log.Warning("Could not read .gitignore in " + dir.Path + ": " + err.Error())
		}
		return stack
	}
	return stack.Push(g)
}

func (l *Lister) walk(node *Node, depth int, stack ignore.Stack, counts *Counts) {
	if l.MaxDepth > 0 && depth >= l.MaxDepth {
		return
	}

	children, err := l.List(node.Entry, depth, stack)
	if err != nil {
		node.Err = err
		counts.Errors++
		if l.Log != nil {
			l.Log.Debug("Error listing directory: " + err.Error())
		}
		return
	}

	for _, child := range children {
		n := &Node{Entry: child}
		node.Children = append(node.Children, n)
		if child.IsFile() {
			counts.Files++
			continue
		}
		counts.Directories++
		if !l.Explore(child) {
			continue
		}
		next := stack
		if l.Ignore {
			next = l.push(stack, child, counts)
		}
		l.walk(n, depth+1, next, counts)
	}
}

// Entries returns every entry of the tree in walk order, the root first.
func (n *Node) Entries() []*entry.Entry {
	out := []*entry.Entry{n.Entry}
	for _, c := range n.Children {
		out = append(out, c.Entries()...)
	}
	return out
}
