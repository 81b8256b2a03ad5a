package request

// ExtraKey identifies one adapter-defined option of type T. Keys compare by
// identity, so two adapters can never collide even when they choose the
// same name.
//
//	var WithCredentials = request.NewExtraKey[bool]("withCredentials")
//
//	cfg.Extras = WithCredentials.Set(cfg.Extras, true)
//	on, _ := WithCredentials.Get(req.Extras)
type ExtraKey[T any] struct {
	name string
}

// NewExtraKey creates a key for an option named name.
func NewExtraKey[T any](name string) *ExtraKey[T] {
	return &ExtraKey[T]{name: name}
}

// String returns the key name.
func (k *ExtraKey[T]) String() string {
	return k.name
}

// Get returns the value stored under k, if any.
func (k *ExtraKey[T]) Get(e Extras) (T, bool) {
	v, ok := e[k].(T)
	return v, ok
}

// Set stores v under k and returns the resulting container, allocating it
// when e is nil.
func (k *ExtraKey[T]) Set(e Extras, v T) Extras {
	if e == nil {
		e = make(Extras)
	}
	e[k] = v
	return e
}

// Extras holds adapter-defined options keyed by *ExtraKey values.
// Use ExtraKey.Get and ExtraKey.Set to access it.
type Extras map[any]any

func (e Extras) clone() Extras {
	if e == nil {
		return nil
	}
	out := make(Extras, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
