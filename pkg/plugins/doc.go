// Package plugins reorders plugin descriptors relative to firekit's own
// plugin.
//
// Plugins that need the fire namespace must run after firekit/main but before
// anything that consumes their output. MoveAfterFirekit moves a plugin to the
// slot directly behind firekit/main:
//
//	list := []plugins.Ref{{Src: "auth-plugin"}, {Src: "firekit/main"}, {Src: "b"}}
//	err := plugins.MoveAfterFirekit(list, "auth-plugin")
//	// list: firekit/main, auth-plugin, b
//
// Descriptors may be written in YAML either as a bare path or as a mapping
// with a src field.
package plugins
