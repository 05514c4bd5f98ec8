package commands

import (
	"strings"

	"git.home.luguber.info/inful/docrender/internal/plugin"
	"git.home.luguber.info/inful/docrender/internal/plugin/assets"
	"git.home.luguber.info/inful/docrender/internal/plugin/journal"
	"git.home.luguber.info/inful/docrender/internal/plugin/searchindex"
	"github.com/pterm/pterm"
)

// PluginsCmd implements the 'plugins' command.
type PluginsCmd struct {
	JSON bool `name:"json" help:"Print plugins as JSON"`
}

type pluginInfo struct {
	Name        string   `json:"name"`
	Versions    []string `json:"versions"`
	Type        string   `json:"type"`
	Enabled     bool     `json:"enabled"`
	Description string   `json:"description"`
}

// builtinRegistry registers every built-in plugin without opening any resources.
func builtinRegistry() (*plugin.Registry, error) {
	reg := plugin.NewRegistry()
	for _, p := range []plugin.Plugin{assets.New(), searchindex.New(), journal.New(nil)} {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (c *PluginsCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	reg, err := builtinRegistry()
	if err != nil {
		return err
	}

	var infos []pluginInfo
	for _, name := range reg.Names() {
		latest, err := reg.GetLatest(name)
		if err != nil {
			return err
		}
		meta := latest.Metadata()
		infos = append(infos, pluginInfo{
			Name:        name,
			Versions:    reg.ListVersions(name),
			Type:        string(meta.Type),
			Enabled:     cfg.HasPlugin(name),
			Description: meta.Description,
		})
	}

	if c.JSON {
		return writeJSON(g, infos)
	}
	data := pterm.TableData{{"NAME", "VERSIONS", "TYPE", "ENABLED", "DESCRIPTION"}}
	for _, info := range infos {
		enabled := "no"
		if info.Enabled {
			enabled = "yes"
		}
		data = append(data, []string{info.Name, strings.Join(info.Versions, ", "), info.Type, enabled, info.Description})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(g.stdout()).Render()
}
