package app

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rbright/kikitori/internal/audio"
)

// devices lists capture sources; the default one is starred.
func (r Runner) devices(ctx context.Context, _ invocation) int {
	sources, err := audio.ListSources(ctx)
	if err != nil {
		return r.fail(err)
	}
	if len(sources) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return exitFailure
	}

	tw := tabwriter.NewWriter(r.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tSOURCE\tSTATE\tFLAGS\tDESCRIPTION")
	for _, src := range sources {
		mark := ""
		if src.Default {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, src.ID, src.State, sourceFlags(src), src.Description)
	}
	if err := tw.Flush(); err != nil {
		return r.fail(err)
	}
	return exitOK
}

func sourceFlags(src audio.Source) string {
	var flags []string
	if !src.Available {
		flags = append(flags, "unavailable")
	}
	if src.Muted {
		flags = append(flags, "muted")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
