package game

import (
	"errors"
	"fmt"

	"airogue/internal/worldgen"
)

// SlotFunc is a subscriber invoked when a signal fires. emitArgs carries
// the arguments supplied at emit time; bound action args take precedence
// over them.
type SlotFunc func(emitArgs map[string]any) error

// Subscribe appends fn to the ordered subscriber list for (entity, signal).
func (r *Registry) Subscribe(entity, signal string, fn SlotFunc) {
	r.touch(entity)
	key := signalKey{entity: entity, signal: signal}
	r.subs[key] = append(r.subs[key], fn)
}

// Emit fires a signal on an entity, invoking subscribers in subscription
// order. All subscribers run; their errors are joined.
func (r *Registry) Emit(entity, signal string, emitArgs map[string]any) error {
	key := signalKey{entity: entity, signal: signal}
	var errs []error
	for _, fn := range r.subs[key] {
		if err := fn(emitArgs); err != nil {
			errs = append(errs, fmt.Errorf("signal %s on %s: %w", signal, entity, err))
		}
	}
	return errors.Join(errs...)
}

// opFunc is one of the fixed named operations generated actions resolve to.
type opFunc func(r *Registry, args map[string]any) error

// ops is the fixed slot registry. Serialized data carries only symbolic
// action kinds; behavior binds here at load time, never at parse time.
var ops = map[string]opFunc{
	"set_value":       opSetValue,
	"change_value":    opChangeValue,
	"add_to_map":      opAddToMap,
	"remove_from_map": opRemoveFromMap,
	"move_entity":     opMoveEntity,
	"add_to_list":     opAddToList,
	"end_game":        opEndGame,
}

// ResolveAction binds a symbolic action reference to a slot closure over
// the registry. Unknown kinds are load errors.
func ResolveAction(r *Registry, ref worldgen.ActionRef) (SlotFunc, error) {
	op, ok := ops[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown action kind %q", ref.Kind)
	}

	return func(emitArgs map[string]any) error {
		args := make(map[string]any, len(emitArgs)+len(ref.Args))
		for k, v := range emitArgs {
			args[k] = v
		}
		for k, v := range ref.Args {
			args[k] = v
		}
		return op(r, args)
	}, nil
}

func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string", key)
	}
	return s, nil
}

func argNumber(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("argument %q is not a number", key)
}

func attributesOf(r *Registry, entity, component string) (*Attributes, error) {
	v, ok := r.Get(entity, component)
	if !ok {
		return nil, fmt.Errorf("entity %q has no component %q", entity, component)
	}
	attrs, ok := v.(*Attributes)
	if !ok {
		return nil, fmt.Errorf("component %q on %q carries no attributes", component, entity)
	}
	return attrs, nil
}

func opSetValue(r *Registry, args map[string]any) error {
	entity, err := argString(args, "entity")
	if err != nil {
		return err
	}
	component, err := argString(args, "component")
	if err != nil {
		return err
	}
	attribute, err := argString(args, "attribute")
	if err != nil {
		return err
	}
	attrs, err := attributesOf(r, entity, component)
	if err != nil {
		return err
	}
	attrs.Values[attribute] = args["value"]
	return nil
}

func opChangeValue(r *Registry, args map[string]any) error {
	entity, err := argString(args, "entity")
	if err != nil {
		return err
	}
	component, err := argString(args, "component")
	if err != nil {
		return err
	}
	attribute, err := argString(args, "attribute")
	if err != nil {
		return err
	}
	delta, err := argNumber(args, "value")
	if err != nil {
		return err
	}
	attrs, err := attributesOf(r, entity, component)
	if err != nil {
		return err
	}
	current, _ := attrs.Values[attribute].(float64)
	attrs.Values[attribute] = current + delta
	return nil
}

func opAddToMap(r *Registry, args map[string]any) error {
	entity, err := argString(args, "entity")
	if err != nil {
		return err
	}
	r.Tag(entity, OnMap)
	return nil
}

func opRemoveFromMap(r *Registry, args map[string]any) error {
	entity, err := argString(args, "entity")
	if err != nil {
		return err
	}
	r.Untag(entity, OnMap)
	return nil
}

func opMoveEntity(r *Registry, args map[string]any) error {
	entity, err := argString(args, "entity")
	if err != nil {
		return err
	}
	x, err := argNumber(args, "x")
	if err != nil {
		return err
	}
	y, err := argNumber(args, "y")
	if err != nil {
		return err
	}
	r.Set(entity, CompPosition, Position{X: int(x), Y: int(y)})
	return nil
}

func opAddToList(r *Registry, args map[string]any) error {
	entity, err := argString(args, "entity")
	if err != nil {
		return err
	}
	component, err := argString(args, "component")
	if err != nil {
		return err
	}
	attribute, err := argString(args, "attribute")
	if err != nil {
		return err
	}
	attrs, err := attributesOf(r, entity, component)
	if err != nil {
		return err
	}
	list, _ := attrs.Values[attribute].([]any)
	attrs.Values[attribute] = append(list, args["value"])
	return nil
}

func opEndGame(r *Registry, args map[string]any) error {
	r.Set(RootEntity, CompGameOver, true)
	return nil
}
