package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rea/internal/timeline"
	"github.com/roach88/rea/internal/value"
)

type stubRender struct{ inputs Ports }

func (s stubRender) Name() string                         { return "stub-render" }
func (s stubRender) Inputs() Ports                        { return s.inputs }
func (s stubRender) Run(timeline.Reader, value.Map) error { return nil }

type stubExtension struct{}

func (stubExtension) Name() string   { return "stub-ext" }
func (stubExtension) Inputs() Ports  { return Ports{"in": value.TypeInt} }
func (stubExtension) Outputs() Ports { return Ports{"out": value.TypeInt} }
func (stubExtension) Run(in value.Map) (value.Map, error) {
	return value.Map{"out": in["in"]}, nil
}

type stubApp struct{}

func (stubApp) Name() string  { return "stub-app" }
func (stubApp) Inputs() Ports { return nil }
func (stubApp) Run(tl *timeline.Table, _ value.Map) (*timeline.Table, error) {
	return tl, nil
}

func TestPluginClassFromConstructor(t *testing.T) {
	r := NewRender(stubRender{})
	e := NewExtension(stubExtension{})
	a := NewApp(stubApp{})

	assert.Equal(t, ClassRender, r.Class())
	assert.Equal(t, ClassExtension, e.Class())
	assert.Equal(t, ClassApp, a.Class())

	_, ok := r.Render()
	assert.True(t, ok)
	_, ok = r.App()
	assert.False(t, ok)
	_, ok = e.Extension()
	assert.True(t, ok)
	_, ok = a.App()
	assert.True(t, ok)

	assert.Nil(t, r.Outputs())
	assert.Nil(t, a.Outputs())
	assert.Equal(t, Ports{"out": value.TypeInt}, e.Outputs())
	assert.Equal(t, "stub-ext", e.Name())
}

func TestZeroPluginInvalid(t *testing.T) {
	var p Plugin
	assert.False(t, p.Valid())
	assert.Error(t, p.Validate())
	assert.Equal(t, "", p.Name())
	assert.Nil(t, p.Inputs())
}

func TestPluginValidatePorts(t *testing.T) {
	p := NewRender(stubRender{inputs: Ports{"title": value.Type("float")}})
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")

	assert.NoError(t, NewRender(stubRender{inputs: Ports{"title": value.TypeString}}).Validate())
}

func TestClassString(t *testing.T) {
	for _, c := range []Class{ClassRender, ClassExtension, ClassApp} {
		parsed, err := ParseClass(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseClass("widget")
	assert.Error(t, err)
	assert.Equal(t, "class(9)", Class(9).String())
}

func TestPortsNamesSorted(t *testing.T) {
	p := Ports{"b": value.TypeInt, "a": value.TypeInt, "c": value.TypeInt}
	assert.Equal(t, []string{"a", "b", "c"}, p.Names())
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(Entry{
		Name:   "stub-ext",
		Class:  ClassExtension,
		Params: Ports{"n": value.TypeInt},
		New: func(params value.Map) (Plugin, error) {
			if params["n"].(value.Int) < 0 {
				return Plugin{}, errors.New("n must be positive")
			}
			return NewExtension(stubExtension{}), nil
		},
	}))

	err := c.Register(Entry{Name: "stub-ext", New: func(value.Map) (Plugin, error) { return Plugin{}, nil }})
	assert.Error(t, err, "duplicate name")

	p, err := c.New("stub-ext", value.Map{"n": value.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, ClassExtension, p.Class())

	_, err = c.New("stub-ext", value.Map{})
	assert.ErrorContains(t, err, "missing parameter")

	_, err = c.New("stub-ext", value.Map{"n": value.String("2")})
	assert.ErrorContains(t, err, "must be int")

	_, err = c.New("stub-ext", value.Map{"n": value.Int(1), "x": value.Int(1)})
	assert.ErrorContains(t, err, "unknown parameter")

	_, err = c.New("stub-ext", value.Map{"n": value.Int(-1)})
	assert.ErrorContains(t, err, "positive")

	_, err = c.New("nope", nil)
	assert.ErrorContains(t, err, "unknown plugin type")

	assert.Equal(t, []string{"stub-ext"}, c.Names())
}

func TestCatalogRejectsMismatchedFactory(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(Entry{
		Name:  "stub-app",
		Class: ClassRender,
		New:   func(value.Map) (Plugin, error) { return NewApp(stubApp{}), nil },
	}))
	_, err := c.New("stub-app", nil)
	assert.ErrorContains(t, err, "declares render")

	require.NoError(t, c.Register(Entry{
		Name:  "alias",
		Class: ClassApp,
		New:   func(value.Map) (Plugin, error) { return NewApp(stubApp{}), nil },
	}))
	_, err = c.New("alias", nil)
	assert.ErrorContains(t, err, `built "stub-app"`)
}
