package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	core "github.com/goliatone/go-aidash/components/dashboard"
)

type libraryCmd struct {
	JSON bool `name:"json" help:"Print JSON instead of a table."`
}

func (cmd *libraryCmd) Run(g *Globals) error {
	templates := core.DefaultLibrary().Templates()
	if cmd.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCHART\tICON")
	for _, tpl := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tpl.ID, tpl.Title, tpl.ChartType, tpl.Icon)
	}
	return tw.Flush()
}

type chartTypesCmd struct{}

func (cmd *chartTypesCmd) Run(g *Globals) error {
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tLABEL\tDEFAULT SPAN")
	for _, opt := range core.ChartTypes() {
		span := core.DefaultSpan(opt.Type)
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\n", opt.Type, opt.Label, span.ColSpan, span.RowSpan)
	}
	return tw.Flush()
}
