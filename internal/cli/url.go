package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simpleindex/pkg/errors"
	"github.com/matzehuels/simpleindex/pkg/simple"
)

func (c *CLI) urlCommand() *cobra.Command {
	var metadata bool

	cmd := &cobra.Command{
		Use:   "url <project> [filename]",
		Short: "Print the URL of a project page or one of its files",
		Long: `Print the details URL of a project on the configured index. This does not
contact the index.

With a filename, the project page is fetched and the download URL of that
file is printed; --metadata prints the URL of its separately served core
metadata instead (PEP 658).`,
		Example: `  simpleindex url Django
  simpleindex url requests requests-2.31.0-py3-none-any.whl --metadata`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: c.completeProjectFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				u, err := simple.ProjectURL(c.settings().IndexURL, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, u)
				return nil
			}

			details, err := c.fetchProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f, err := findFile(details, args[1])
			if err != nil {
				return err
			}
			if !metadata {
				fmt.Fprintln(out, f.URL)
				return nil
			}
			u := f.MetadataURL()
			if u == "" {
				return errors.New(errors.ErrCodeNotFound, "index does not serve core metadata for %s", f.Filename)
			}
			fmt.Fprintln(out, u)
			return nil
		},
	}

	cmd.Flags().BoolVar(&metadata, "metadata", false, "print the core metadata URL of the file")

	return cmd
}

func findFile(d *simple.ProjectDetails, filename string) (*simple.ProjectFile, error) {
	for i := range d.Files {
		if d.Files[i].Filename == filename {
			return &d.Files[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "%s has no file %s", d.Name, filename)
}

