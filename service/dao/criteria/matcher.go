package criteria

import (
	"github.com/viant/atc/service/dao"
)

// Match reports whether value satisfies every parameter named name. A
// parameter holding a slice matches any of its values; parameters with other
// names are ignored.
func Match(name, value string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != name {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			if value != actual {
				return false
			}
		case []string:
			matched := false
			for _, candidate := range actual {
				if value == candidate {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}
