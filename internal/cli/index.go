package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simpleindex/pkg/simple"
)

func (c *CLI) indexCommand() *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "index [filter]",
		Short: "List the projects of an index",
		Long: `List the projects served by the index. An optional filter keeps projects
whose normalized name contains it.`,
		Example: `  simpleindex index
  simpleindex index django --limit 20
  simpleindex index --index-url https://download.pytorch.org/whl/ --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatPlain, formatJSON, formatYAML); err != nil {
				return err
			}
			ctx := cmd.Context()
			client, closeFn, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			spinner := newSpinnerWithContext(ctx, "Fetching project index...")
			spinner.Start()
			prog := newProgress(loggerFromContext(ctx))
			idx, err := client.FetchIndex(ctx, c.flags.refresh)
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done("fetched index", "projects", len(idx.Projects))

			filter := ""
			if len(args) == 1 {
				filter = normalizeFilter(args[0])
			}
			idx = filterIndex(idx, filter, limit)

			out := cmd.OutOrStdout()
			if format == formatPlain {
				for _, p := range idx.Projects {
					fmt.Fprintln(out, displayName(p))
				}
				return nil
			}
			doc, err := simple.EncodeIndexJSON(idx)
			if err != nil {
				return err
			}
			return writeDocument(out, doc, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatPlain, "output format: plain, json, yaml")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many projects (0 for all)")

	return cmd
}

// filterIndex keeps entries whose normalized name contains filter, up to
// limit entries when limit is positive.
func filterIndex(idx *simple.ProjectIndex, filter string, limit int) *simple.ProjectIndex {
	out := &simple.ProjectIndex{Meta: idx.Meta}
	for _, p := range idx.Projects {
		if limit > 0 && len(out.Projects) == limit {
			break
		}
		if filter == "" || strings.Contains(string(p.Name), filter) {
			out.Projects = append(out.Projects, p)
		}
	}
	return out
}

// normalizeFilter normalizes a filter like a project name where possible.
func normalizeFilter(s string) string {
	if n, err := simple.Normalize(s); err == nil {
		return string(n)
	}
	return strings.ToLower(s)
}

func displayName(p simple.ProjectEntry) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return string(p.Name)
}
