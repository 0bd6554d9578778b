package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simpleindex/pkg/simple"
)

func (c *CLI) filesCommand() *cobra.Command {
	var (
		format string
		filter fileFilter
	)

	cmd := &cobra.Command{
		Use:   "files <project>",
		Short: "List the distribution files of a project",
		Example: `  simpleindex files requests
  simpleindex files numpy --wheels-only --no-yanked
  simpleindex files flask --format yaml`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeProjects,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatPlain, formatJSON, formatYAML); err != nil {
				return err
			}
			details, err := c.fetchProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			shown := *details
			shown.Files = filter.apply(details.Files)
			return printFiles(cmd, &shown, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, plain, json, yaml")
	cmd.Flags().BoolVar(&filter.noYanked, "no-yanked", false, "hide yanked files")
	cmd.Flags().BoolVar(&filter.wheelsOnly, "wheels-only", false, "show only wheels")
	cmd.Flags().BoolVar(&filter.withMetadata, "with-metadata", false, "show only files whose core metadata is served separately")

	return cmd
}

func printFiles(cmd *cobra.Command, d *simple.ProjectDetails, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case formatPlain:
		for i := range d.Files {
			fmt.Fprintln(out, d.Files[i].URL)
		}
		return nil
	case formatJSON, formatYAML:
		doc, err := simple.EncodeDetailsJSON(d)
		if err != nil {
			return err
		}
		return writeDocument(out, doc, format)
	}

	if len(d.Files) == 0 {
		printWarning("No files match")
		return nil
	}
	fmt.Fprintln(out, StyleTitle.Render(string(d.Name))+" "+StyleDim.Render(fmt.Sprintf("api %s · %d files", d.Meta.APIVersion, len(d.Files))))
	fmt.Fprintln(out, filesTable(d.Files).Render())
	if len(d.Versions) > 0 {
		printKeyValue("Versions", fmt.Sprintf("%d", len(d.Versions)))
	}
	for _, track := range d.Tracks {
		printKeyValue("Tracks", track)
	}
	for _, loc := range d.AlternateLocations {
		printKeyValue("Alternate", loc)
	}
	return nil
}
