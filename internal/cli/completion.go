package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simpleindex/pkg/integrations/pypi"
)

// completionTimeout bounds index requests made while completing.
const completionTimeout = 3 * time.Second

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for simpleindex.

To load completions:

Bash:
  $ source <(simpleindex completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ simpleindex completion bash > /etc/bash_completion.d/simpleindex
  # macOS:
  $ simpleindex completion bash > $(brew --prefix)/etc/bash_completion.d/simpleindex

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ simpleindex completion zsh > "${fpath[1]}/_simpleindex"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ simpleindex completion fish | source

  # To load completions for each session, execute once:
  $ simpleindex completion fish > ~/.config/fish/completions/simpleindex.fish

PowerShell:
  PS> simpleindex completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> simpleindex completion powershell > simpleindex.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeProjects completes the project argument from the index, served
// from the response cache when possible.
func (c *CLI) completeProjects(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	err := c.withCompletionClient(cmd, func(ctx context.Context, client *pypi.Client) error {
		idx, err := client.FetchIndex(ctx, false)
		if err != nil {
			return err
		}
		prefix := normalizeFilter(toComplete)
		for _, p := range idx.Projects {
			if strings.HasPrefix(string(p.Name), prefix) {
				names = append(names, string(p.Name))
			}
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeProjectFiles completes the project, then one of its filenames.
func (c *CLI) completeProjectFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return c.completeProjects(cmd, args, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var files []string
	err := c.withCompletionClient(cmd, func(ctx context.Context, client *pypi.Client) error {
		details, err := client.FetchProject(ctx, args[0], false)
		if err != nil {
			return err
		}
		for _, f := range details.Files {
			if strings.HasPrefix(f.Filename, toComplete) {
				files = append(files, f.Filename)
			}
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return files, cobra.ShellCompDirectiveNoFileComp
}

// withCompletionClient runs fn with a client built from the flags parsed for
// the completed command line.
func (c *CLI) withCompletionClient(cmd *cobra.Command, fn func(context.Context, *pypi.Client) error) error {
	cfg, err := c.resolveConfig()
	if err != nil {
		return err
	}
	c.cfg = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	client, closeFn, err := c.newClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, client)
}
