package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridpress/gridpress/pkg/editor"
	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/registry"
	"github.com/gridpress/gridpress/pkg/sync"
)

// sectionCommand creates the section editing command group.
func (c *CLI) sectionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Edit sections on a page",
	}

	cmd.AddCommand(c.sectionAddCommand())
	cmd.AddCommand(c.sectionDeleteCommand())
	cmd.AddCommand(c.sectionMoveCommand())
	cmd.AddCommand(c.sectionSetCommand())
	cmd.AddCommand(c.sectionListCommand())

	return cmd
}

// withEditor loads the page, applies fn through an editor, and saves the
// result. One command invocation is one load-mutate-save cycle; a
// concurrent write in between surfaces as a revision conflict.
func (c *CLI) withEditor(cmd *cobra.Command, pageID string, fn func(*editor.Editor) error) error {
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
	doc := loader.Load(cmd.Context(), pageID)

	ed := editor.New(doc, registry.Default(), cfg.GridConfig().Cols)
	if err := fn(ed); err != nil {
		return err
	}
	if !ed.Dirty() {
		printInfo("No changes")
		return nil
	}

	stored, err := loader.Save(cmd.Context(), ed.Document())
	if err != nil {
		return err
	}
	printSuccess("Saved %s", StyleHighlight.Render(stored.ID))
	printStats(len(stored.Sections), stored.Rev, false)
	return nil
}

// sectionAddCommand creates the "section add" subcommand.
func (c *CLI) sectionAddCommand() *cobra.Command {
	var at int

	cmd := &cobra.Command{
		Use:   "add <page-id> <type>",
		Short: "Add a section to a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd, args[0], func(ed *editor.Editor) error {
				if at < 0 {
					at = len(ed.Document().Sections)
				}
				s, err := ed.AddSection(args[1], at)
				if err != nil {
					return err
				}
				printDetail("added %s (%s)", s.ID, s.Type)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&at, "at", -1, "insert position (default append)")
	return cmd
}

// sectionDeleteCommand creates the "section delete" subcommand.
func (c *CLI) sectionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <page-id> <section-id>",
		Short: "Delete a section from a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd, args[0], func(ed *editor.Editor) error {
				return ed.DeleteSection(args[1])
			})
		},
	}
}

// sectionMoveCommand creates the "section move" subcommand.
func (c *CLI) sectionMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "move <page-id> <section-id> <up|down>",
		Short:     "Swap a section with its neighbor",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := editor.Direction(args[2])
			if dir != editor.Up && dir != editor.Down {
				return fmt.Errorf("direction must be %q or %q", editor.Up, editor.Down)
			}
			return c.withEditor(cmd, args[0], func(ed *editor.Editor) error {
				return ed.MoveSection(args[1], dir)
			})
		},
	}
}

// sectionSetCommand creates the "section set" subcommand for prop edits.
func (c *CLI) sectionSetCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "set <page-id> <section-id> <prop> <value>",
		Short: "Set a section prop",
		Long: `Set one prop on a section. Values are stored as strings unless --json
is given, in which case the value is parsed as JSON first (numbers,
booleans, arrays, objects).`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any = args[3]
			if asJSON {
				if err := json.Unmarshal([]byte(args[3]), &value); err != nil {
					return fmt.Errorf("parse value as JSON: %w", err)
				}
			}
			return c.withEditor(cmd, args[0], func(ed *editor.Editor) error {
				return ed.UpdateProp(args[1], args[2], value)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "parse the value as JSON")
	return cmd
}

// sectionListCommand creates the "section list" subcommand.
func (c *CLI) sectionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <page-id>",
		Short: "List the sections of a page",
		Args:  cobra.ExactArgs(1),
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
			printInfo("%s", StyleTitle.Render(args[0]))
			for i, s := range doc.Sections {
				printDetail("%d. %s [%s] %s", i, s.ID, s.Type, layoutString(s.Layout))
			}
			printStats(len(doc.Sections), doc.Rev, false)
			return nil
		},
	}
}

func layoutString(l *page.Layout) string {
	if l == nil {
		return "(no layout)"
	}
	return fmt.Sprintf("x=%d y=%d w=%d h=%d", l.X, l.Y, l.W, l.H)
}
