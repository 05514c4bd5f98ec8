package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/docrender/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"github.com/pterm/pterm"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit  int    `short:"n" help:"Number of renders to show" default:"10"`
	Render string `help:"Show page fingerprints of one render ID"`
	JSON   bool   `name:"json" help:"Print summaries as JSON"`
}

func (c *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return ferrors.ConfigError("journal plugin is not enabled").
			WithContext("plugins", cfg.Plugins).Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewRenderHistoryProjection(store, c.Limit)
	if err := projection.Rebuild(context.Background()); err != nil {
		return err
	}

	out := g.stdout()
	if c.Render != "" {
		summary, ok := projection.GetRender(c.Render)
		if !ok {
			return ferrors.NotFoundError("render not found in journal").
				WithContext("render_id", c.Render).Build()
		}
		if c.JSON {
			return writeJSON(g, summary)
		}
		data := pterm.TableData{{"URL", "FINGERPRINT"}}
		for url, fp := range summary.Fingerprints {
			data = append(data, []string{url, fp})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(sortRows(data)).WithWriter(out).Render()
	}

	history := projection.GetHistory()
	if c.JSON {
		return writeJSON(g, history)
	}
	if len(history) == 0 {
		_, err := fmt.Fprintln(out, "No renders recorded")
		return err
	}
	data := pterm.TableData{{"RENDER", "STARTED", "STATUS", "PAGES", "DURATION", "REASON"}}
	for _, h := range history {
		data = append(data, []string{
			h.RenderID,
			h.StartedAt.Local().Format(time.DateTime),
			h.Status,
			fmt.Sprintf("%d/%d", h.Written, h.PageCount),
			h.Duration.Round(time.Millisecond).String(),
			h.Reason,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(out).Render()
}

func writeJSON(g *Global, v any) error {
	enc := json.NewEncoder(g.stdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// sortRows sorts every row after the header by its first column.
func sortRows(data pterm.TableData) pterm.TableData {
	slices.SortFunc(data[1:], func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return data
}
