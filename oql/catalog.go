package oql

import (
	"fmt"

	"github.com/spf13/cast"
	"gopkg.in/src-d/go-errors.v1"
	yaml "gopkg.in/yaml.v2"
)

// ErrInvalidCatalog is returned when a catalog descriptor cannot be decoded
// into a World.
var ErrInvalidCatalog = errors.NewKind("invalid catalog: %s")

// catalogDescriptor is the YAML shape of a catalog file:
//
//	types:
//	  student:
//	    record:
//	      name: string
//	      age: int
//	sources:
//	  students:
//	    collection: bag
//	    of: student
//
// Scalar type names are bool, int, float, string, datetime, interval and
// regex; anything else refers to a named type. A type may also be a map with
// a "record" key (attributes in declaration order) or a "collection"/"of"
// pair. A "nullable: true" sibling marks the type nullable.
type catalogDescriptor struct {
	Types   yaml.MapSlice `yaml:"types"`
	Sources yaml.MapSlice `yaml:"sources"`
}

// LoadWorld decodes a YAML catalog descriptor into a World.
func LoadWorld(data []byte) (*World, error) {
	var desc catalogDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, ErrInvalidCatalog.New(err)
	}

	w := NewWorld()
	for _, item := range desc.Types {
		name := cast.ToString(item.Key)
		t, err := decodeType(item.Value)
		if err != nil {
			return nil, err
		}
		w.Tipes[Named(name)] = t
	}
	for _, item := range desc.Sources {
		name := cast.ToString(item.Key)
		t, err := decodeType(item.Value)
		if err != nil {
			return nil, err
		}
		w.Sources[name] = t
	}
	return w, nil
}

func decodeType(v interface{}) (Type, error) {
	switch tv := v.(type) {
	case string:
		return scalarType(tv)
	case yaml.MapSlice:
		return decodeCompound(tv)
	default:
		return nil, ErrInvalidCatalog.New(fmt.Sprintf("unexpected type descriptor %v", v))
	}
}

func scalarType(name string) (Type, error) {
	switch name {
	case "bool":
		return &BoolType{}, nil
	case "int":
		return &IntType{}, nil
	case "float":
		return &FloatType{}, nil
	case "string":
		return &StringType{}, nil
	case "datetime":
		return &DateTimeType{}, nil
	case "interval":
		return &IntervalType{}, nil
	case "regex":
		return &RegexType{}, nil
	default:
		return &UserType{Sym: Named(name)}, nil
	}
}

func decodeCompound(m yaml.MapSlice) (Type, error) {
	var result Type
	var monoid CollectionMonoid
	var inner Type
	null := false

	for _, item := range m {
		key := cast.ToString(item.Key)
		switch key {
		case "record":
			atts, ok := item.Value.(yaml.MapSlice)
			if !ok {
				return nil, ErrInvalidCatalog.New("record must map attribute names to types")
			}
			rec := &Attributes{}
			for _, att := range atts {
				t, err := decodeType(att.Value)
				if err != nil {
					return nil, err
				}
				rec.Atts = append(rec.Atts, AttrType{Idn: cast.ToString(att.Key), Type: t})
			}
			result = &RecordType{Atts: rec}
		case "collection":
			switch cast.ToString(item.Value) {
			case "set":
				monoid = &SetMonoid{}
			case "bag":
				monoid = &BagMonoid{}
			case "list":
				monoid = &ListMonoid{}
			default:
				return nil, ErrInvalidCatalog.New(fmt.Sprintf("unknown collection monoid %v", item.Value))
			}
		case "of":
			t, err := decodeType(item.Value)
			if err != nil {
				return nil, err
			}
			inner = t
		case "nullable":
			null = cast.ToBool(item.Value)
		default:
			return nil, ErrInvalidCatalog.New(fmt.Sprintf("unknown key %q", key))
		}
	}

	if monoid != nil {
		if inner == nil {
			return nil, ErrInvalidCatalog.New("collection requires an \"of\" type")
		}
		result = &CollectionType{M: monoid, Inner: inner}
	}
	if result == nil {
		return nil, ErrInvalidCatalog.New("type descriptor declares no type")
	}
	result.SetNullable(null)
	return result, nil
}
