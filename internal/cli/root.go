package cli

import "github.com/spf13/cobra"

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gen",
		Short: "Admin code generator",
		Long: `gen imports database tables, keeps their column metadata in sync with the
live schema and renders NestJS, Vue, SQL and Prisma code for them.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(TablesCmd())
	rootCmd.AddCommand(ImportCmd())
	rootCmd.AddCommand(SyncCmd())
	rootCmd.AddCommand(PreviewCmd())
	rootCmd.AddCommand(ZipCmd())
	return rootCmd
}
