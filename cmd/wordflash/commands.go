package main

import (
	"github.com/spf13/cobra"

	"codeberg.org/snonux/wordflash/internal/cli"
	"codeberg.org/snonux/wordflash/internal/processor"
)

type handler = func(cmd *cobra.Command, args []string, proc *processor.Processor) error

func addCommands(root *cobra.Command, flags *cli.Flags) {
	root.AddCommand(
		wordCommands(flags)...,
	)
	root.AddCommand(
		exchangeCommands(flags)...,
	)
	root.AddCommand(
		maintenanceCommands(flags)...,
	)
	root.AddCommand(poolCommand(flags), categoriesCommand(flags))
}

func newCommand(flags *cli.Flags, use, short string, args cobra.PositionalArgs, run handler) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE:  withProcessor(flags, run),
	}
}

func addWordFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVarP(&flags.Translation, "translation", "t", "", "Chinese translation, looked up when empty")
	cmd.Flags().StringVarP(&flags.Example, "example", "e", "", "Example sentence")
	cmd.Flags().StringVarP(&flags.Category, "category", "c", "", "Category name or id")
	cmd.Flags().StringVar(&flags.Color, "color", flags.Color, "Color of a newly created category")
}

func wordCommands(flags *cli.Flags) []*cobra.Command {
	add := newCommand(flags, "add <word>...", "Add words to your list", cobra.MinimumNArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			for _, w := range args {
				if err := proc.AddWord(cmd.Context(), w); err != nil {
					return err
				}
			}
			return nil
		})
	addWordFlags(add, flags)

	list := newCommand(flags, "list", "List your words", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.ListWords(cmd.Context())
		})

	search := newCommand(flags, "search [query]", "Search your words", cobra.MaximumNArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return proc.SearchWords(cmd.Context(), query)
		})
	search.Flags().StringVarP(&flags.Category, "category", "c", "", "Only words in this category")

	update := newCommand(flags, "update <id>", "Change the translation, example or category of a word", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.UpdateWord(cmd.Context(), args[0])
		})
	addWordFlags(update, flags)

	del := newCommand(flags, "delete <id>", "Remove a word from your list", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.DeleteWord(cmd.Context(), args[0])
		})

	review := newCommand(flags, "review <id>", "Record a review answer", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.Review(cmd.Context(), args[0])
		})
	review.Flags().BoolVar(&flags.Correct, "correct", false, "The answer was right")
	review.Flags().BoolVar(&flags.Incorrect, "incorrect", false, "The answer was wrong")

	imp := newCommand(flags, "import <file>", "Add the words of a word list or wordbank", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.ImportBatch(cmd.Context(), args[0])
		})

	seed := newCommand(flags, "seed", "Add the starter words", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.Seed(cmd.Context())
		})

	theme := newCommand(flags, "theme <wordbank>", "Show which words of a wordbank are in your list", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.Theme(cmd.Context(), args[0])
		})

	whoami := newCommand(flags, "whoami", "Show the profile of this device", cobra.NoArgs,
		func(_ *cobra.Command, _ []string, proc *processor.Processor) error {
			proc.WhoAmI()
			return nil
		})

	return []*cobra.Command{add, list, search, update, del, review, imp, seed, theme, whoami}
}

func exchangeCommands(flags *cli.Flags) []*cobra.Command {
	export := newCommand(flags, "export", "Write a snapshot of your profile", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.Export(cmd.Context())
		})
	export.Flags().StringVarP(&flags.ExportFormat, "format", "f", flags.ExportFormat, "Snapshot format: json or csv")
	export.Flags().BoolVar(&flags.NoImages, "no-images", false, "Leave pictures out")
	export.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Leave review progress out")
	export.Flags().BoolVar(&flags.NoSettings, "no-settings", false, "Leave settings out")
	export.Flags().BoolVarP(&flags.Compress, "compress", "z", false, "Gzip the snapshot")
	export.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Directory of the snapshot file")

	deck := newCommand(flags, "anki", "Write an Anki import file of your words", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.AnkiDeck(cmd.Context())
		})
	deck.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Directory of the deck file and media folder")
	deck.Flags().StringVar(&flags.DeckName, "deck", flags.DeckName, "Base name of the deck file")

	restore := newCommand(flags, "restore <snapshot>", "Import a snapshot into your profile", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.Restore(cmd.Context(), args[0])
		})

	upload := newCommand(flags, "upload", "Simulate uploading your profile", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.Upload(cmd.Context())
		})

	uploads := newCommand(flags, "uploads", "Show the upload history", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.Uploads(cmd.Context())
		})

	return []*cobra.Command{export, deck, restore, upload, uploads}
}

func maintenanceCommands(flags *cli.Flags) []*cobra.Command {
	cleanup := newCommand(flags, "cleanup", "Remove words whose picture failed", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.Cleanup(cmd.Context())
		})
	cleanup.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false, "Only report failed words")

	backfill := newCommand(flags, "backfill", "Rewrite shared translations from the translation table", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.Backfill(cmd.Context())
		})

	regenerate := newCommand(flags, "regenerate <id>...", "Draw new pictures for words", cobra.MinimumNArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			for _, id := range args {
				if err := proc.Regenerate(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		})
	regenerate.Flags().BoolVar(&flags.Force, "force", false, "Replace pictures that look fine")

	reset := newCommand(flags, "reset", "Archive your profile and start a new one", cobra.NoArgs,
		func(_ *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.Reset()
		})

	models := newCommand(flags, "models", "List the OpenAI models wordflash can use", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.ListModels(cmd.Context())
		})

	return []*cobra.Command{cleanup, backfill, regenerate, reset, models}
}

func poolCommand(flags *cli.Flags) *cobra.Command {
	pool := &cobra.Command{
		Use:   "pool",
		Short: "Inspect the shared word and picture pool",
	}

	stats := newCommand(flags, "stats", "Show pool usage", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.PoolStats(cmd.Context())
		})

	gc := newCommand(flags, "gc", "Remove rarely used pictures", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.PoolGC(cmd.Context())
		})
	gc.Flags().IntVar(&flags.MinUsage, "min-usage", flags.MinUsage, "Keep pictures used at least this often")
	gc.Flags().DurationVar(&flags.OlderThan, "older-than", flags.OlderThan, "Only remove pictures older than this")

	del := newCommand(flags, "delete <word>", "Remove a word and its picture from the pool", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.PoolDelete(cmd.Context(), args[0])
		})

	pool.AddCommand(stats, gc, del)
	return pool
}

func categoriesCommand(flags *cli.Flags) *cobra.Command {
	categories := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage your categories",
	}

	list := newCommand(flags, "list", "List categories", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, proc *processor.Processor) error {
			return proc.ListCategories(cmd.Context())
		})

	add := newCommand(flags, "add <name>", "Create a category", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.AddCategory(cmd.Context(), args[0])
		})
	add.Flags().StringVar(&flags.Color, "color", flags.Color, "Category color")

	rename := newCommand(flags, "rename <id> <name>", "Rename a category", cobra.ExactArgs(2),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.RenameCategory(cmd.Context(), args[0], args[1])
		})

	del := newCommand(flags, "delete <id>", "Delete a category", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, proc *processor.Processor) error {
			return proc.DeleteCategory(cmd.Context(), args[0])
		})

	categories.AddCommand(list, add, rename, del)
	return categories
}
