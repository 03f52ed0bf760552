package proxy

// Factory creates the stand-in returned for a lazy definition.
type Factory interface {
	CreateProxy(typeName string, init Initializer) (any, error)
}

// Wrapper turns a handle into a value implementing the proxied type's methods.
type Wrapper func(l *Lazy) any

// WrapperFactory returns registered wrappers, or the bare *Lazy for types
// without one.
type WrapperFactory struct {
	wrappers map[string]Wrapper
}

func NewWrapperFactory() *WrapperFactory {
	return &WrapperFactory{wrappers: make(map[string]Wrapper)}
}

// Register sets the wrapper used for typeName.
func (f *WrapperFactory) Register(typeName string, w Wrapper) {
	f.wrappers[typeName] = w
}

func (f *WrapperFactory) CreateProxy(typeName string, init Initializer) (any, error) {
	l := NewLazy(typeName, init)
	if w, ok := f.wrappers[typeName]; ok {
		return w(l), nil
	}
	return l, nil
}
