package commands

import (
	"fmt"
	"slices"

	"git.home.luguber.info/inful/docrender/internal/config"
	"github.com/pterm/pterm"
)

// OptionsCmd implements the 'options' command.
type OptionsCmd struct {
	Theme string `short:"t" help:"Override the theme name or directory"`
	JSON  bool   `name:"json" help:"Print descriptors as JSON"`
}

func (c *OptionsCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	applyOverrides(cfg, "", "", c.Theme)
	// the journal contributes no settings; skip opening its database
	cfg.Plugins = slices.DeleteFunc(slices.Clone(cfg.Plugins), func(p string) bool {
		return p == config.PluginJournal
	})

	s, err := newSession(cfg, g.Logger, nil)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	descriptors, err := s.renderer.Parameters()
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(g, descriptors)
	}

	data := pterm.TableData{{"NAME", "KIND", "DEFAULT", "DESCRIPTION"}}
	for _, d := range descriptors {
		def := ""
		if d.Default != nil {
			def = fmt.Sprint(d.Default)
		}
		data = append(data, []string{d.Name, string(d.Kind), def, d.Help})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(g.stdout()).Render()
}
