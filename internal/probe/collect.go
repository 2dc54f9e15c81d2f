package probe

import "metaprobe/pkg/records"

// CollectFields builds the distinct-value set of every field.
//
// With a column list the fields are exactly those columns (duplicates
// collapsed); without one they are the union of record keys in order of
// first appearance. Fields that end up with no values are dropped.
func CollectFields(recs []*records.Record, columns []string) []FieldValueSet {
	names := columns
	if names == nil {
		names = unionKeys(recs)
	} else {
		names = dedupe(names)
	}

	out := make([]FieldValueSet, 0, len(names))
	for _, name := range names {
		seen := make(map[records.Value]struct{})
		var values []records.Value
		for _, r := range recs {
			v, ok := r.Get(name)
			if !ok {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		if len(values) == 0 {
			continue
		}
		out = append(out, FieldValueSet{Name: name, Values: values})
	}
	return out
}

func unionKeys(recs []*records.Record) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, r := range recs {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

func dedupe(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
