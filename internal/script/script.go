// Package script executes user-supplied Lua control functions behind
// the control.Controller contract.
//
// A control script defines a global function:
//
//	function control(state)
//	  -- state.x, state.y, state.vx, state.vy,
//	  -- state.rotation, state.angular_vel, state.fuel
//	  return 0.5                  -- vertical scheme
//	  -- return {thrust, gimbal}  -- vectored scheme
//	  -- return {left, right}     -- differential scheme
//	end
//
// Globals persist between ticks, so scripts can keep their own state.
// A console(value) builtin writes to the one-way debug sink.
package script

import (
	"fmt"
	"strconv"

	"github.com/Shopify/go-lua"
	"github.com/san-kum/landsim/internal/lander"
)

// Sink receives debug lines printed by the script via console().
type Sink func(line string)

// Controller runs a compiled Lua control function once per tick. It
// is not safe for concurrent use; the simulation loop invokes it
// serially.
type Controller struct {
	l      *lua.State
	scheme lander.Scheme
	sink   Sink
}

// New compiles a control script for the given scheme. The source is
// executed once at load time to define the control function; a script
// that fails to compile, fails at load, or defines no control
// function is rejected here, before any simulation tick runs.
func New(source string, scheme lander.Scheme, sink Sink) (*Controller, error) {
	c := &Controller{
		l:      lua.NewState(),
		scheme: scheme,
		sink:   sink,
	}
	lua.OpenLibraries(c.l)
	c.registerConsole()

	if err := lua.DoString(c.l, source); err != nil {
		return nil, fmt.Errorf("script: load error: %v", err)
	}

	c.l.Global("control")
	defined := c.l.TypeOf(-1) == lua.TypeFunction
	c.l.Pop(1)
	if !defined {
		return nil, fmt.Errorf("script: no control function defined")
	}
	return c, nil
}

// Command pushes the state snapshot into Lua, calls control(state),
// and converts the result into the scheme's command shape.
func (c *Controller) Command(s lander.Snapshot) (lander.Command, error) {
	c.l.Global("control")
	c.pushSnapshot(s)
	if err := c.l.ProtectedCall(1, 1, 0); err != nil {
		return nil, fmt.Errorf("runtime error: %v", err)
	}
	defer c.l.Pop(1)

	switch c.scheme {
	case lander.SchemeVertical:
		level, ok := c.number(-1)
		if !ok {
			return nil, fmt.Errorf("control must return a number (throttle)")
		}
		return lander.Throttle{Level: level}, nil
	case lander.SchemeVectored:
		pair, err := c.pair("{thrust, gimbal}")
		if err != nil {
			return nil, err
		}
		return lander.ThrustVector{Level: pair[0], Gimbal: pair[1]}, nil
	case lander.SchemeDifferential:
		pair, err := c.pair("{left, right}")
		if err != nil {
			return nil, err
		}
		return lander.Differential{Left: pair[0], Right: pair[1]}, nil
	}
	return nil, lander.ErrSchemeMismatch
}

func (c *Controller) pushSnapshot(s lander.Snapshot) {
	c.l.NewTable()
	fields := []struct {
		name  string
		value float64
	}{
		{"x", s.X},
		{"y", s.Y},
		{"vx", s.VX},
		{"vy", s.VY},
		{"rotation", s.Rotation},
		{"angular_vel", s.AngularVel},
		{"fuel", s.Fuel},
	}
	for _, f := range fields {
		c.l.PushNumber(f.value)
		c.l.SetField(-2, f.name)
	}
}

// pair reads a two-element array table off the stack top.
func (c *Controller) pair(shape string) ([2]float64, error) {
	var out [2]float64
	if c.l.TypeOf(-1) != lua.TypeTable {
		return out, fmt.Errorf("control must return %s", shape)
	}
	for i := 0; i < 2; i++ {
		c.l.RawGetInt(-1, i+1)
		v, ok := c.number(-1)
		c.l.Pop(1)
		if !ok {
			return out, fmt.Errorf("control must return %s as numbers", shape)
		}
		out[i] = v
	}
	return out, nil
}

func (c *Controller) number(index int) (float64, bool) {
	if c.l.TypeOf(index) != lua.TypeNumber {
		return 0, false
	}
	return c.l.ToNumber(index)
}

// registerConsole installs the console(value) debug builtin. Output
// goes one way, into the sink; the script can never read it back.
func (c *Controller) registerConsole() {
	c.l.Register("console", func(l *lua.State) int {
		if c.sink == nil {
			return 0
		}
		var text string
		switch l.TypeOf(1) {
		case lua.TypeString:
			text, _ = l.ToString(1)
		case lua.TypeNumber:
			n, _ := l.ToNumber(1)
			text = strconv.FormatFloat(n, 'g', -1, 64)
		case lua.TypeBoolean:
			text = strconv.FormatBool(l.ToBoolean(1))
		case lua.TypeNil:
			text = "nil"
		default:
			text = lua.TypeNameOf(l, 1)
		}
		c.sink(text)
		return 0
	})
}
