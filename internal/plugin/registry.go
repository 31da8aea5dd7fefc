package plugin

import "sort"

// ChannelName is the method channel every platform adapter listens on.
const ChannelName = "appstack_plugin"

// Registry maps platform names to their plugin. It is read-only once the
// server starts.
type Registry struct {
	plugins map[string]*Plugin
}

// NewRegistry returns a registry holding plugins.
func NewRegistry(plugins ...*Plugin) *Registry {
	r := &Registry{plugins: make(map[string]*Plugin, len(plugins))}
	for _, p := range plugins {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any plugin for the same platform.
func (r *Registry) Register(p *Plugin) {
	r.plugins[p.Platform()] = p
}

// Lookup finds the plugin for a platform on the given channel.
func (r *Registry) Lookup(platform, channel string) (*Plugin, bool) {
	if channel != ChannelName {
		return nil, false
	}
	p, ok := r.plugins[platform]
	return p, ok
}

// Platforms lists registered platforms in sorted order.
func (r *Registry) Platforms() []string {
	out := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
