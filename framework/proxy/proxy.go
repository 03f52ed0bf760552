// Package proxy provides virtual proxies for lazy object definitions.
//
// Go cannot subclass a type at runtime, so a lazy entry resolves to a
// *Lazy handle, or to a typed wrapper registered for its type name that
// embeds the handle and forwards the consumer-facing methods:
//
//	type lazyMailer struct{ *proxy.Lazy }
//
//	func (m lazyMailer) Send(to string) error {
//	    return m.MustInstance().(Mailer).Send(to)
//	}
//
//	proxies := proxy.NewWrapperFactory()
//	proxies.Register("Mailer", func(l *proxy.Lazy) any { return lazyMailer{l} })
package proxy

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Initializer builds the real instance on first use.
type Initializer func() (any, error)

// Materializer is implemented by *Lazy and every wrapper embedding it.
type Materializer interface {
	IsInitialized() bool
	Instance() (any, error)
}

// Lazy defers the construction of an instance until Instance is first called.
// The initializer runs at most once; its error, if any, is returned forever after.
type Lazy struct {
	typeName    string
	init        Initializer
	once        sync.Once
	instance    any
	err         error
	initialized atomic.Bool
}

// NewLazy creates a handle for typeName.
func NewLazy(typeName string, init Initializer) *Lazy {
	return &Lazy{typeName: typeName, init: init}
}

func (l *Lazy) TypeName() string { return l.typeName }

// IsInitialized reports whether the real instance was built successfully.
func (l *Lazy) IsInitialized() bool { return l.initialized.Load() }

// Instance materializes the proxy if needed and returns the real instance.
func (l *Lazy) Instance() (any, error) {
	l.once.Do(func() {
		l.instance, l.err = l.init()
		l.initialized.Store(l.err == nil)
		l.init = nil
	})
	return l.instance, l.err
}

// MustInstance is Instance for wrapper methods that cannot return an error.
func (l *Lazy) MustInstance() any {
	v, err := l.Instance()
	if err != nil {
		panic(fmt.Sprintf("proxy: initializing %s: %v", l.typeName, err))
	}
	return v
}

// Of materializes m and asserts the instance type.
func Of[T any](m Materializer) (T, error) {
	var zero T
	v, err := m.Instance()
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("proxy: instance is %T, not %T", v, zero)
	}
	return typed, nil
}
