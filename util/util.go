package util

import (
	"github.com/rjNemo/underscore"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func MergeMaps[T comparable, V any](m1 map[T]V, m2 map[T]V, combine func(v1 V, v2 V) V) map[T]V {
	res := maps.Clone(m1)
	if res == nil {
		res = make(map[T]V)
	}
	for k, v := range m2 {
		if existing, ok := res[k]; ok {
			res[k] = combine(existing, v)
		} else {
			res[k] = v
		}
	}
	return res
}

func UniqueBy[T any, V comparable](ls []T, selector func(v T) V) []T {
	res := []T{}
	seen := []V{}
	for _, e := range ls {
		s := selector(e)
		if !underscore.Contains(seen, s) {
			seen = append(seen, s)
			res = append(res, e)
		}
	}
	return res
}

// Keys of the map in ascending order, so output built from a map is stable.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func Sum[T constraints.Integer](ls []T) T {
	var total T
	for _, v := range ls {
		total += v
	}
	return total
}
