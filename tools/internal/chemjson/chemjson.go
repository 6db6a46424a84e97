// Package chemjson has helpers for walking MyChem.info response objects.
// The upstream API collapses single-element lists into plain objects, so
// every list-valued field needs the same normalization.
package chemjson

import (
	"github.com/tidwall/gjson"
)

// ForEachItem visits every element of an array result, or the result
// itself when the upstream collapsed a single-element list.
func ForEachItem(res gjson.Result, fn func(gjson.Result)) {
	if !res.Exists() {
		return
	}
	if res.IsArray() {
		res.ForEach(func(_, item gjson.Result) bool {
			fn(item)
			return true
		})
		return
	}
	fn(res)
}

// Items collects the normalized elements of a list-valued field.
func Items(res gjson.Result) []gjson.Result {
	var items []gjson.Result
	ForEachItem(res, func(item gjson.Result) {
		items = append(items, item)
	})
	return items
}

// FirstString returns the first non-empty string at the given paths.
// An array value yields its first element.
func FirstString(rec []byte, paths ...string) string {
	for _, path := range paths {
		res := gjson.GetBytes(rec, path)
		if res.IsArray() {
			arr := res.Array()
			if len(arr) == 0 {
				continue
			}
			res = arr[0]
		}
		if s := res.String(); s != "" {
			return s
		}
	}
	return ""
}
