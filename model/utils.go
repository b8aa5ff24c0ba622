package model

// Field returns the named field of n when n is an object.
func Field(n Node, name string) (Node, bool) {
	obj, ok := n.(*ObjectNode)
	if !ok {
		return nil, false
	}
	return obj.Get(name)
}

// StringField returns the string value of the named scalar field of n.
func StringField(n Node, name string) (string, bool) {
	f, ok := Field(n, name)
	if !ok {
		return "", false
	}
	v, ok := f.(*ValueNode)
	if !ok {
		return "", false
	}
	return v.String()
}

// FindParentContainingField returns the closest strict ancestor of n that is an object with the named field.
func FindParentContainingField(n Node, field string) (Node, bool) {
	if n == nil {
		return nil, false
	}
	for current := n.Parent(); current != nil; current = current.Parent() {
		if obj, ok := current.(*ObjectNode); ok && obj.Has(field) {
			return current, true
		}
	}
	return nil, false
}
