//go:build !reldb_debug

package btree

// Check is a no-op outside the reldb_debug build tag.
func (t *Tree[T]) Check() error { return nil }
