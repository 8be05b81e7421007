package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gperrors "github.com/gridpress/gridpress/pkg/errors"
	gpio "github.com/gridpress/gridpress/pkg/io"
	"github.com/gridpress/gridpress/pkg/sync"
)

// getCommand creates the get command.
func (c *CLI) getCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <page-id>",
		Short: "Fetch a page document as JSON",
		Long: `Fetch a page document from the configured store and print it as JSON.
A page that has never been saved yields its deterministic default document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.newStore(cmd, cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = st.Close(cmd.Context()) }()

			doc := sync.NewLoader(st, c.Logger).Load(cmd.Context(), args[0])

			if out != "" {
				if err := gpio.ExportJSON(doc, out); err != nil {
					return err
				}
				printSuccess("Fetched %s", StyleHighlight.Render(doc.ID))
				printStats(len(doc.Sections), doc.Rev, false)
				printFile(out)
				return nil
			}
			return gpio.WriteJSON(doc, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file instead of stdout")
	return cmd
}

// putCommand creates the put command.
func (c *CLI) putCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Save a page document from a JSON file",
		Long: `Save a page document to the configured store. The document's revision
must match the stored revision; a mismatch means another editor saved in
between and the command fails. Pass --force to overwrite anyway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := gpio.ImportJSON(args[0])
			if err != nil {
				return err
			}

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
			stored, err := loader.Save(cmd.Context(), doc)
			if force && gperrors.Is(err, gperrors.ErrCodeConflict) {
				stored, err = loader.ForceSave(cmd.Context(), doc)
			}
			if gperrors.Is(err, gperrors.ErrCodeConflict) {
				printError("Page %s changed since rev %d", doc.ID, doc.Rev)
				printNextStep("Overwrite anyway", fmt.Sprintf("gridpress put --force %s", args[0]))
				return errors.New("revision conflict")
			}
			if err != nil {
				return err
			}

			printSuccess("Saved %s", StyleHighlight.Render(stored.ID))
			printStats(len(stored.Sections), stored.Rev, false)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite on revision conflict")
	return cmd
}
