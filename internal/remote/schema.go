package remote

import (
	"fmt"

	"medidesk/internal/store"
)

// Codec converts one field between its internal representation and the form
// the remote store holds.
type Codec struct {
	Encode func(v any) (any, error)
	Decode func(v any) (any, error)
}

// Field maps one internal field name onto its remote column.
type Field struct {
	Local  string
	Remote string
	Codec  *Codec // nil means the value passes through unchanged
}

// Schema declares, per entity kind, the remote collection name and the full
// field map. Marshal and Unmarshal convert between the entity struct and a
// record keyed by local field names; the renaming to remote columns is done
// generically by EncodeRecord/DecodeRecord.
type Schema struct {
	Collection string
	Fields     []Field
	Marshal    func(store.Entity) (map[string]any, error)
	Unmarshal  func(map[string]any) (store.Entity, error)
}

func (sc Schema) field(local string) (Field, bool) {
	for _, f := range sc.Fields {
		if f.Local == local {
			return f, true
		}
	}
	return Field{}, false
}

// IDColumn returns the remote column holding the entity id.
func (sc Schema) IDColumn() string {
	if f, ok := sc.field("id"); ok {
		return f.Remote
	}
	return "id"
}

// EncodeRecord renames a local-keyed record to remote columns, applying
// field codecs. Unknown local names are an error so that typos in partial
// updates fail loudly instead of writing stray columns.
func (sc Schema) EncodeRecord(local map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(local))
	for name, v := range local {
		f, ok := sc.field(name)
		if !ok {
			return nil, fmt.Errorf("%s: unknown field %q", sc.Collection, name)
		}
		if f.Codec != nil {
			encoded, err := f.Codec.Encode(v)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", sc.Collection, name, err)
			}
			v = encoded
		}
		out[f.Remote] = v
	}
	return out, nil
}

// DecodeRecord renames a remote record back to local field names, applying
// field codecs. Remote columns without a mapping are dropped.
func (sc Schema) DecodeRecord(rec map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(rec))
	for _, f := range sc.Fields {
		v, ok := rec[f.Remote]
		if !ok {
			continue
		}
		if f.Codec != nil {
			decoded, err := f.Codec.Decode(v)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", sc.Collection, f.Local, err)
			}
			v = decoded
		}
		out[f.Local] = v
	}
	return out, nil
}
