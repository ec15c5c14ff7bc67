// Package factory provides a generic type-name registry used to build
// pluggable modules, such as metrics sinks, from configuration. A module is
// declared as a type string plus a map of raw settings; its factory decodes
// the settings into a typed struct and returns the implementation.
//
// Example:
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c struct{ URL string `json:"url"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewInfluxSink(c.URL), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": u}})
package factory
