package container

import (
	"fmt"
	"reflect"
)

// Factory builds a value from the container. The handle it receives carries
// the current resolution stack; use it (not a captured root container) to
// resolve dependencies.
type Factory func(c *Container) (any, error)

// Constructor builds a value from already-resolved arguments.
type Constructor func(args ...any) (any, error)

// Reference is an argument token that resolves to another service.
type Reference string

// Ref returns a token for the named service.
func Ref(name string) Reference { return Reference(name) }

// ConfigRef is an argument token read from the "config" service.
type ConfigRef struct {
	Key     string
	Default any
}

// Param returns a token for the config value key, falling back to def.
func Param(key string, def any) ConfigRef { return ConfigRef{Key: key, Default: def} }

// Alias is an explicit alias value for Set.
type Alias string

// Call is a method invoked on a freshly built instance.
type Call struct {
	Method string
	Args   []any
}

// configReader is what ConfigRef needs from the "config" service.
type configReader interface {
	Get(name string, def any) any
}

// Definition is a deferred recipe for building a named service.
type Definition struct {
	name        string
	constructor Constructor
	factory     Factory
	args        []any
	calls       []Call
	singleton   bool
}

// NewDefinition returns a singleton definition built by ctor.
func NewDefinition(ctor Constructor) *Definition {
	return &Definition{constructor: ctor, singleton: true}
}

func newFactoryDefinition(f Factory) *Definition {
	return &Definition{factory: f, singleton: true}
}

// Args sets the constructor arguments. Reference and ConfigRef tokens are
// resolved at build time, everything else is passed through.
func (d *Definition) Args(args ...any) *Definition {
	d.args = args
	return d
}

// Call queues a method call run after construction, in registration order.
// The method must be exported; a trailing error result fails the build.
func (d *Definition) Call(method string, args ...any) *Definition {
	d.calls = append(d.calls, Call{Method: method, Args: args})
	return d
}

// MultiInstance makes every Get build a new instance.
func (d *Definition) MultiInstance() *Definition {
	d.singleton = false
	return d
}

// IsSingleton reports whether the built instance is cached.
func (d *Definition) IsSingleton() bool { return d.singleton }

// Name returns the name the definition is registered under.
func (d *Definition) Name() string { return d.name }

// build runs the recipe. c carries the resolution stack with d's name on it.
func (d *Definition) build(c *Container) (any, error) {
	var (
		instance any
		err      error
	)
	switch {
	case d.factory != nil:
		instance, err = d.factory(c)
	case d.constructor != nil:
		var args []any
		if args, err = c.resolveArgs(d.args); err != nil {
			return nil, err
		}
		instance, err = d.constructor(args...)
	default:
		return nil, fmt.Errorf("container: [%s] has no constructor", d.name)
	}
	if err != nil {
		return nil, err
	}

	for _, call := range d.calls {
		args, err := c.resolveArgs(call.Args)
		if err != nil {
			return nil, err
		}
		if err := invoke(instance, call.Method, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (c *Container) resolveArgs(args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case Reference:
			instance, err := c.Get(string(v))
			if err != nil {
				return nil, err
			}
			out[i] = instance
		case ConfigRef:
			value, err := c.configValue(v)
			if err != nil {
				return nil, err
			}
			out[i] = value
		default:
			out[i] = arg
		}
	}
	return out, nil
}

func (c *Container) configValue(ref ConfigRef) (any, error) {
	cfg, err := c.Get("config")
	if err != nil {
		return nil, err
	}
	reader, ok := cfg.(configReader)
	if !ok {
		return ref.Default, nil
	}
	return reader.Get(ref.Key, ref.Default), nil
}

// invoke calls the exported method on instance with args.
func invoke(instance any, method string, args []any) error {
	m := reflect.ValueOf(instance).MethodByName(method)
	if !m.IsValid() {
		return fmt.Errorf("container: %T has no method %s", instance, method)
	}

	t := m.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}
	if len(args) < fixed || (!t.IsVariadic() && len(args) != fixed) {
		return fmt.Errorf("container: %T.%s takes %d arguments, got %d", instance, method, t.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if i >= fixed {
			pt = t.In(t.NumIn() - 1).Elem()
		} else {
			pt = t.In(i)
		}
		if arg == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(arg)
		switch {
		case v.Type().AssignableTo(pt):
		case v.Type().ConvertibleTo(pt):
			v = v.Convert(pt)
		default:
			return fmt.Errorf("container: %T.%s argument %d: cannot use %T as %s", instance, method, i, arg, pt)
		}
		in[i] = v
	}

	for _, out := range m.Call(in) {
		if err, ok := out.Interface().(error); ok && err != nil {
			return err
		}
	}
	return nil
}
