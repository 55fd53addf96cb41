package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/tsawler/pdfgraph/alloc"
	"github.com/tsawler/pdfgraph/core"
)

// A stream dictionary file is a YAML mapping. Strings become names unless
// written as "(text)", which makes a string object; null, booleans,
// numbers, sequences and mappings map onto the matching PDF objects.
//
//	Filter: [ASCIIHexDecode, FlateDecode]
//	DecodeParms: [null, {Predictor: 12, Columns: 4}]

// parseStreamDict builds a dictionary owned by the caller from YAML source.
func parseStreamDict(a *alloc.Allocator, src []byte) (core.Dict, error) {
	var m map[string]any
	if err := yaml.Unmarshal(src, &m); err != nil {
		return core.Dict{}, fmt.Errorf("stream dictionary: %w", err)
	}
	obj, err := toObject(a, m)
	if err != nil {
		return core.Dict{}, fmt.Errorf("stream dictionary: %w", err)
	}
	return obj.AsDict(), nil
}

func toObject(a *alloc.Allocator, v any) (core.Object, error) {
	switch v := v.(type) {
	case nil:
		return core.NewNull(a).Object, nil
	case bool:
		return core.NewBool(a, v).Object, nil
	case int:
		return core.NewInteger(a, int64(v)).Object, nil
	case int64:
		return core.NewInteger(a, v).Object, nil
	case uint64:
		return core.NewInteger(a, int64(v)).Object, nil
	case float64:
		return core.NewReal(a, v).Object, nil
	case string:
		if len(v) >= 2 && strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
			return core.NewString(a, []byte(v[1:len(v)-1])).Object, nil
		}
		return core.NewName(a, strings.TrimPrefix(v, "/")).Object, nil
	case []any:
		arr := core.NewArray(a)
		for i, e := range v {
			obj, err := toObject(a, e)
			if err != nil {
				arr.Release()
				return core.Object{}, fmt.Errorf("[%d]: %w", i, err)
			}
			arr.Append(obj)
		}
		return arr.Object, nil
	case map[string]any:
		return mapObject(a, v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = e
		}
		return mapObject(a, m)
	default:
		return core.Object{}, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

func mapObject(a *alloc.Allocator, m map[string]any) (core.Object, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := core.NewDict(a)
	for _, k := range keys {
		obj, err := toObject(a, m[k])
		if err != nil {
			d.Release()
			return core.Object{}, fmt.Errorf("%s: %w", k, err)
		}
		d.SetObject(strings.TrimPrefix(k, "/"), obj)
	}
	return d.Object, nil
}

type streamDictFile struct {
	Filter []string `yaml:"Filter,omitempty"`
	Length int      `yaml:"Length"`
}

// formatStreamDict describes data of length n encoded with chain.
func formatStreamDict(chain []string, n int) ([]byte, error) {
	return yaml.Marshal(streamDictFile{Filter: chain, Length: n})
}
