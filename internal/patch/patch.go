// Package patch provides explicit present/absent markers for partial updates.
// A zero value means "leave the stored field untouched"; only fields built
// with Set are applied by the services.
package patch

// String is an optional string field in a partial update.
type String struct {
	Value string
	Set   bool
}

// Set returns a present field carrying v.
func Set(v string) String {
	return String{Value: v, Set: true}
}

// Apply overwrites dst with the field value when the field is present.
func (s String) Apply(dst *string) {
	if s.Set {
		*dst = s.Value
	}
}

// ApplyPtr overwrites dst with a pointer to the field value when present.
// Used for nullable columns.
func (s String) ApplyPtr(dst **string) {
	if s.Set {
		v := s.Value
		*dst = &v
	}
}
