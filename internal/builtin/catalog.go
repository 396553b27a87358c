package builtin

import (
	"io"

	"github.com/roach88/rea/internal/plugin"
	"github.com/roach88/rea/internal/value"
)

// NewCatalog returns a catalog holding every builtin plugin. Renders write
// to w.
func NewCatalog(w io.Writer) *plugin.Catalog {
	c := plugin.NewCatalog()
	for _, e := range Entries(w) {
		if err := c.Register(e); err != nil {
			panic(err)
		}
	}
	return c
}

// Entries lists the builtin catalog entries.
func Entries(w io.Writer) []plugin.Entry {
	entries := make([]plugin.Entry, 0, len(value.Types)+8)
	for _, t := range value.Types {
		entries = append(entries, plugin.Entry{
			Name:   ConstPrefix + string(t),
			Class:  plugin.ClassExtension,
			Params: plugin.Ports{"value": t},
			New: func(params value.Map) (plugin.Plugin, error) {
				return plugin.NewExtension(NewConst(params["value"])), nil
			},
		})
	}

	stateless := []struct {
		name  string
		class plugin.Class
		build func() plugin.Plugin
	}{
		{"concat", plugin.ClassExtension, func() plugin.Plugin { return plugin.NewExtension(Concat{}) }},
		{"sum", plugin.ClassExtension, func() plugin.Plugin { return plugin.NewExtension(Sum{}) }},
		{"minutes", plugin.ClassExtension, func() plugin.Plugin { return plugin.NewExtension(Minutes{}) }},
		{"add-event", plugin.ClassApp, func() plugin.Plugin { return plugin.NewApp(AddEvent{}) }},
		{"tag", plugin.ClassApp, func() plugin.Plugin { return plugin.NewApp(Tag{}) }},
		{"shift", plugin.ClassApp, func() plugin.Plugin { return plugin.NewApp(Shift{}) }},
		{"pomodoro", plugin.ClassApp, func() plugin.Plugin { return plugin.NewApp(Pomodoro{}) }},
		{"agenda", plugin.ClassRender, func() plugin.Plugin { return plugin.NewRender(NewAgenda(w)) }},
		{"summary", plugin.ClassRender, func() plugin.Plugin { return plugin.NewRender(NewSummary(w)) }},
	}
	for _, s := range stateless {
		entries = append(entries, plugin.Entry{
			Name:  s.name,
			Class: s.class,
			New: func(value.Map) (plugin.Plugin, error) {
				return s.build(), nil
			},
		})
	}
	return entries
}
