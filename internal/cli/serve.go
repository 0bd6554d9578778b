package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simpleindex/pkg/server"
)

// shutdownTimeout bounds how long in-flight requests may finish.
const shutdownTimeout = 10 * time.Second

func (c *CLI) serveCommand() *cobra.Command {
	var listen, baseURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a translating proxy for the index",
		Long: `Serve the configured index under /simple/ in the representation each client
asks for. HTML-only indexes become available as PEP 691 JSON and JSON-only
indexes as PEP 503 HTML. Responses are cached with the configured backend.

Point pip at it with:
  pip install --index-url http://127.0.0.1:8080/simple/ <package>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings()
			if listen == "" {
				listen = cfg.Server.Listen
			}
			if baseURL == "" {
				baseURL = cfg.Server.BaseURL
			}

			ctx := cmd.Context()
			client, closeFn, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			srv := server.New(client, server.Options{
				Addr:    listen,
				BaseURL: baseURL,
				Logger:  c.Logger,
			})

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()
			printInfo("Proxying %s on %s", StyleLink.Render(client.IndexURL()), StyleHighlight.Render("http://"+listen+"/simple/"))

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			c.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "public URL of the proxy index, used for absolute links")

	return cmd
}
