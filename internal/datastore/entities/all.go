package entities

// All returns every entity in migration order.
func All() []any {
	return []any{&User{}, &Customer{}, &Script{}, &Submission{}}
}
