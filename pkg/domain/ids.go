// Package domain holds identifier types shared across modules. IDs are
// string-typed UUIDs so they serialize cleanly while staying distinct at
// compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "gxpgovern/pkg/domain-errors"
)

// DraftID identifies a proposed content change.
type DraftID string

// EntryID identifies an audit chain entry.
type EntryID string

func NewDraftID() DraftID {
	return DraftID(uuid.NewString())
}

func NewEntryID() EntryID {
	return EntryID(uuid.NewString())
}

// ParseDraftID validates and normalizes an external draft id.
func ParseDraftID(s string) (DraftID, error) {
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid draft id")
	}
	return DraftID(u.String()), nil
}

func (d DraftID) String() string { return string(d) }
func (d DraftID) IsNil() bool    { return d == "" }

func (e EntryID) String() string { return string(e) }
func (e EntryID) IsNil() bool    { return e == "" }
