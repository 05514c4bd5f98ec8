package commands

import "git.home.luguber.info/inful/docrender/internal/config"

// applyOverrides replaces configuration values with non-empty command-line flags.
func applyOverrides(cfg *config.Config, output, project, theme string) {
	if output != "" {
		cfg.Output.Directory = output
	}
	if project != "" {
		cfg.Project = project
	}
	if theme != "" {
		cfg.Theme = theme
	}
}
