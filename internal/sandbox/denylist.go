package sandbox

import "strings"

// DefaultDenylist blocks whole statement classes that mutate schema or data.
// Matching is plain substring containment, not SQL parsing: it can both
// over-block benign text and miss obfuscated statements. Callers must not
// treat it as a full sandbox.
var DefaultDenylist = []string{
	"create", "alter", "drop", "insert", "update",
	"delete", "truncate", "grant", "revoke",
}

// Denylist is an immutable, case-insensitive keyword filter.
type Denylist struct {
	keywords []string
}

func NewDenylist(keywords []string) Denylist {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return Denylist{keywords: lowered}
}

// Match reports the first denylisted keyword contained in the statement.
func (d Denylist) Match(statement string) (string, bool) {
	lowered := strings.ToLower(statement)
	for _, kw := range d.keywords {
		if strings.Contains(lowered, kw) {
			return kw, true
		}
	}
	return "", false
}
