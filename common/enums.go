// Package common holds enums and persistent key names shared between the
// variant store, the export pipeline and the companion server. Keeping them
// in a leaf package avoids dragging heavier packages into everything that
// only needs a constant.
package common

import "fmt"

// Scope of a bulk variant operation.
type ManageScope int

const (
	ScopeNode ManageScope = iota
	ScopeAsset
	ScopePage
)

func (s ManageScope) String() string {
	switch s {
	case ScopeNode:
		return "node"
	case ScopeAsset:
		return "asset"
	case ScopePage:
		return "page"
	default:
		return fmt.Sprintf("ManageScope(%d)", int(s))
	}
}

// Action of a bulk variant operation.
type ManageAction int

const (
	ActionAdd ManageAction = iota
	ActionRemove
	ActionRemoveOther
)

func (a ManageAction) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionRemoveOther:
		return "remove_other"
	default:
		return fmt.Sprintf("ManageAction(%d)", int(a))
	}
}
