// Package cli implements the gen operator commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"admin_codegen/internal/config"
	"admin_codegen/internal/models"
	"admin_codegen/internal/packager"
	"admin_codegen/internal/server"
)

// withDeps opens the generator without the preview cache and runs fn.
func withDeps(ctx context.Context, fn func(d *server.Deps) error) error {
	cfg := config.Load()
	server.SetupLogging(cfg.LogLevel, true)

	deps, err := server.Open(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(deps)
}

func defaultOperator() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}

// TablesCmd lists live tables that can be imported.
func TablesCmd() *cobra.Command {
	var q models.DBTableQuery

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List database tables that are not yet imported",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Normalize()
			return withDeps(cmd.Context(), func(d *server.Deps) error {
				rows, total, err := d.Gen.ListDBTables(cmd.Context(), q)
				if err != nil {
					return err
				}
				printTables(cmd.OutOrStdout(), rows, total)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&q.TableName, "name", "", "filter by table name")
	cmd.Flags().StringVar(&q.TableComment, "comment", "", "filter by table comment")
	cmd.Flags().IntVar(&q.PageNum, "page", 1, "page number")
	cmd.Flags().IntVar(&q.PageSize, "size", 20, "page size")
	return cmd
}

func printTables(w io.Writer, rows []models.DBTable, total int64) {
	for _, t := range rows {
		comment := t.TableComment
		if comment == "" {
			comment = color.New(color.FgYellow).Sprint("(no comment)")
		}
		fmt.Fprintf(w, "  %-32s %s\n", color.New(color.FgCyan).Sprint(t.TableName), comment)
	}
	fmt.Fprintf(w, "%d of %d tables\n", len(rows), total)
}

// ImportCmd imports tables into the generator.
func ImportCmd() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:   "import <table>...",
		Short: "Import database tables into the code generator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *server.Deps) error {
				if err := d.Gen.ImportTables(cmd.Context(), args, operator); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgGreen).Sprint("imported"), strings.Join(args, ", "))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&operator, "operator", defaultOperator(), "name recorded as creator")
	return cmd
}

// SyncCmd merges live schema changes into an imported table.
func SyncCmd() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:   "sync <table>",
		Short: "Synchronize an imported table with the live schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *server.Deps) error {
				if err := d.Gen.Synchronize(cmd.Context(), args[0], operator); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgGreen).Sprint("synchronized"), args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&operator, "operator", defaultOperator(), "name recorded as updater")
	return cmd
}

// PreviewCmd prints the generated code of one table.
func PreviewCmd() *cobra.Command {
	var artifact string

	cmd := &cobra.Command{
		Use:   "preview <table>",
		Short: "Print the generated code of an imported table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *server.Deps) error {
				detail, err := d.Gen.DetailByName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				preview, err := d.Gen.Preview(cmd.Context(), detail.TableID)
				if err != nil {
					return err
				}
				return printPreview(cmd.OutOrStdout(), preview, artifact)
			})
		},
	}
	cmd.Flags().StringVar(&artifact, "artifact", "", "only print this artifact, e.g. nestjs/dto.ts")
	return cmd
}

func printPreview(w io.Writer, preview map[string]string, only string) error {
	if only != "" {
		content, ok := preview[only]
		if !ok {
			return fmt.Errorf("unknown artifact %q", only)
		}
		fmt.Fprint(w, content)
		return nil
	}

	keys := make([]string, 0, len(preview))
	for k := range preview {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	header := color.New(color.FgHiMagenta, color.Bold)
	for _, k := range keys {
		header.Fprintf(w, "==> %s <==\n", k)
		fmt.Fprintln(w, preview[k])
	}
	return nil
}

// ZipCmd writes the generated code of several tables to a zip file.
func ZipCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "zip <table>...",
		Short: "Write the generated code of imported tables to a zip archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *server.Deps) error {
				files, err := d.Gen.Files(cmd.Context(), args)
				if err != nil {
					return err
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				if err := packager.Archive(files, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d files to %s\n", color.New(color.FgGreen).Sprint("wrote"), len(files), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "code.zip", "archive path")
	return cmd
}
