package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/sync"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "watch <page-id>",
		Short: "Follow live document updates in the terminal",
		Long: `Subscribe to committed writes for a page and display each new revision
as it lands. The default interactive view shows the current section list;
--plain logs one line per update instead, suitable for piping.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID := args[0]
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.newStore(cmd, cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = st.Close(cmd.Context()) }()

			loader := sync.NewLoader(st, c.Logger)

			if plain {
				return c.watchPlain(cmd, loader, pageID)
			}

			model := newWatchModel(pageID, loader.Load(cmd.Context(), pageID))
			prog := tea.NewProgram(model, tea.WithContext(cmd.Context()))

			unsubscribe, err := loader.Subscribe(cmd.Context(), pageID, func(doc page.Document) {
				prog.Send(docUpdateMsg{doc: doc})
			})
			if err != nil {
				return fmt.Errorf("watch page: %w", err)
			}
			defer unsubscribe()

			_, err = prog.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "log one line per update instead of the interactive view")
	return cmd
}

// watchPlain logs updates until the context is cancelled.
func (c *CLI) watchPlain(cmd *cobra.Command, loader *sync.Loader, pageID string) error {
	sub, err := loader.Watch(cmd.Context(), pageID)
	if err != nil {
		return fmt.Errorf("watch page: %w", err)
	}
	defer sub.Unsubscribe()

	printInfo("Watching %s", StyleHighlight.Render(pageID))
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case doc, open := <-sub.Updates():
			if !open {
				return nil
			}
			c.Logger.Info("update", "page", doc.ID, "rev", doc.Rev, "sections", len(doc.Sections))
		}
	}
}
