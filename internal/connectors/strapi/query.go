package strapi

import (
	"fmt"
	"net/url"
	"sort"
)

// encodeQuery flattens nested parameters into bracketed keys, the form the
// Strapi REST API parses: {"pagination": {"page": 1}} becomes
// pagination[page]=1 and {"fields": ["a", "b"]} becomes fields[0]=a&fields[1]=b.
func encodeQuery(q map[string]any) url.Values {
	values := url.Values{}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		flatten(values, k, q[k])
	}
	return values
}

func flatten(values url.Values, prefix string, v any) {
	switch val := v.(type) {
	case nil:
		return
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(values, prefix+"["+k+"]", val[k])
		}
	case []any:
		for i, item := range val {
			flatten(values, fmt.Sprintf("%s[%d]", prefix, i), item)
		}
	case []string:
		for i, item := range val {
			values.Add(fmt.Sprintf("%s[%d]", prefix, i), item)
		}
	default:
		values.Add(prefix, fmt.Sprint(val))
	}
}
