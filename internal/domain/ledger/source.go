package ledger

import (
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SourceKind names the kind of record that generated a ledger entry
type SourceKind string

const (
	SourceKindNone       SourceKind = ""
	SourceKindOrder      SourceKind = "Order"
	SourceKindCollection SourceKind = "Collection"
)

// Source is a weak back-reference from an entry to the order or collection
// that produced it. The zero value means "no source".
type Source struct {
	Kind SourceKind
	ID   uuid.UUID
}

// NoSource returns the empty source used by manual entries
func NoSource() Source { return Source{} }

// OrderSource references an order
func OrderSource(id uuid.UUID) Source {
	return Source{Kind: SourceKindOrder, ID: id}
}

// CollectionSource references a collection
func CollectionSource(id uuid.UUID) Source {
	return Source{Kind: SourceKindCollection, ID: id}
}

// IsNone reports whether the entry has no originating record
func (s Source) IsNone() bool {
	return s.Kind == SourceKindNone
}

// Validate checks the kind and id agree
func (s Source) Validate() error {
	switch s.Kind {
	case SourceKindNone:
		if s.ID != uuid.Nil {
			return shared.NewValidationError("reference id given without reference model")
		}
	case SourceKindOrder, SourceKindCollection:
		if s.ID == uuid.Nil {
			return shared.NewValidationError("reference model given without reference id")
		}
	default:
		return shared.NewValidationError("unknown reference model: " + string(s.Kind))
	}
	return nil
}

// ParseSource rebuilds a source from its stored columns
func ParseSource(model string, id *uuid.UUID) (Source, error) {
	if model == "" && id == nil {
		return NoSource(), nil
	}
	s := Source{Kind: SourceKind(model)}
	if id != nil {
		s.ID = *id
	}
	if err := s.Validate(); err != nil {
		return Source{}, err
	}
	return s, nil
}
