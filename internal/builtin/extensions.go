package builtin

import (
	"time"

	"github.com/roach88/rea/internal/plugin"
	"github.com/roach88/rea/internal/value"
)

// ConstPrefix prefixes the type ids of the constant Extensions, one per value
// type: const-string, const-int, and so on.
const ConstPrefix = "const-"

// Const emits a fixed value on its "value" output.
type Const struct {
	v value.Value
}

// NewConst returns a Const emitting v.
func NewConst(v value.Value) *Const {
	return &Const{v: v}
}

func (c *Const) Name() string          { return ConstPrefix + string(c.v.Type()) }
func (c *Const) Inputs() plugin.Ports  { return nil }
func (c *Const) Outputs() plugin.Ports { return plugin.Ports{"value": c.v.Type()} }

func (c *Const) Run(value.Map) (value.Map, error) {
	return value.Map{"value": c.v}, nil
}

// Concat joins inputs a and b.
type Concat struct{}

func (Concat) Name() string { return "concat" }

func (Concat) Inputs() plugin.Ports {
	return plugin.Ports{"a": value.TypeString, "b": value.TypeString}
}

func (Concat) Outputs() plugin.Ports { return plugin.Ports{"out": value.TypeString} }

func (Concat) Run(in value.Map) (value.Map, error) {
	return value.Map{"out": in["a"].(value.String) + in["b"].(value.String)}, nil
}

// Sum adds inputs a and b.
type Sum struct{}

func (Sum) Name() string { return "sum" }

func (Sum) Inputs() plugin.Ports {
	return plugin.Ports{"a": value.TypeInt, "b": value.TypeInt}
}

func (Sum) Outputs() plugin.Ports { return plugin.Ports{"out": value.TypeInt} }

func (Sum) Run(in value.Map) (value.Map, error) {
	return value.Map{"out": in["a"].(value.Int) + in["b"].(value.Int)}, nil
}

// Minutes turns a minute count into a duration.
type Minutes struct{}

func (Minutes) Name() string          { return "minutes" }
func (Minutes) Inputs() plugin.Ports  { return plugin.Ports{"n": value.TypeInt} }
func (Minutes) Outputs() plugin.Ports { return plugin.Ports{"out": value.TypeDuration} }

func (Minutes) Run(in value.Map) (value.Map, error) {
	n := in["n"].(value.Int)
	return value.Map{"out": value.Duration(time.Duration(n) * time.Minute)}, nil
}
