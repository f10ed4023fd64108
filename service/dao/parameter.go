package dao

// Parameter filters List results by a record field. Value is a string or,
// when several values are accepted, a []string.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter matches name against one or any of several values.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
