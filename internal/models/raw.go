package models

// Raw is one source site's untyped record for a book, keyed by the site's
// own field names. Values keep whatever shape the site returned after JSON
// decoding (string, float64, bool, nested maps and slices).
type Raw map[string]any

// Originals maps each site to the raw record collected from it.
type Originals map[Site]Raw

// Text returns the named property as a string. The second return is false
// when the property is missing or not a string.
func (r Raw) Text(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Number returns the named property as a float64. JSON decoding stores all
// numbers as float64, so that is the only numeric shape checked.
func (r Raw) Number(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// StringList returns the named property as a slice of strings, collecting
// string elements and, for object elements, their "title" field. Used for
// extracting series title lists from scraped records.
func (r Raw) StringList(key string) []string {
	v, ok := r[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range arr {
		switch el := e.(type) {
		case string:
			out = append(out, el)
		case map[string]any:
			if title, ok := el["title"].(string); ok {
				out = append(out, title)
			}
		}
	}
	return out
}
