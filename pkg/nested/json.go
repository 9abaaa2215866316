package nested

import (
	"strings"

	"github.com/tidwall/gjson"
)

// gjson treats these as path syntax, keys containing them are escaped so they
// match literally
const gjsonMeta = `\.*?|#@!`

// AccessJSON applies the Access contract directly on a raw JSON document
// without decoding it first.
func AccessJSON(raw []byte, path ...string) (gjson.Result, error) {
	if len(path) == 0 {
		return gjson.Result{}, ErrEmptyPath
	}

	current := gjson.ParseBytes(raw)
	for _, key := range path {
		if !current.IsObject() {
			return gjson.Result{}, &KeyNotFoundError{Key: key}
		}

		next := current.Get(escapeKey(key))
		if !next.Exists() {
			return gjson.Result{}, &KeyNotFoundError{Key: key}
		}
		current = next
	}

	return current, nil
}

func escapeKey(key string) string {
	if !strings.ContainsAny(key, gjsonMeta) {
		return key
	}

	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(gjsonMeta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
