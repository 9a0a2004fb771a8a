package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"waira/app"
	"waira/pkg/farm/export"
)

func requireOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("--owner is required")
	}
	return nil
}

func statsCmd(c *cli) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the aggregate statistics of a farm",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOwner(owner); err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				st, err := a.Farm.Stats(cmd.Context(), owner)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), st)
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "farm owner uid")
	return cmd
}

func exportCmd(c *cli) *cobra.Command {
	var owner, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a farm to an .xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOwner(owner); err != nil {
				return err
			}
			if out == "" {
				out = owner + "-granja.xlsx"
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				g, err := a.Farm.Grid(cmd.Context(), owner)
				if err != nil {
					return err
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := export.Write(f, g); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				c.log.Info("farm exported", zap.String("owner", owner), zap.String("file", out), zap.Int("cells", g.Len()))
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "farm owner uid")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <owner>-granja.xlsx)")
	return cmd
}

func initGridCmd(c *cli) *cobra.Command {
	var (
		owner      string
		rows, cols int
	)
	cmd := &cobra.Command{
		Use:   "init-grid",
		Short: "Create an empty grid for a farm owner",
		Long: `Creates one empty cell per position. Existing cells are not checked,
so running it twice on the same owner doubles the grid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOwner(owner); err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				l := a.Farm.Layout()
				if rows <= 0 {
					rows = l.Rows
				}
				if cols <= 0 {
					cols = l.Cols
				}
				cells, err := a.Farm.InitializeGrid(cmd.Context(), owner, rows, cols)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d celdas creadas para %s\n", len(cells), owner)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "farm owner uid")
	cmd.Flags().IntVar(&rows, "rows", 0, "grid rows (default GRID_ROWS)")
	cmd.Flags().IntVar(&cols, "cols", 0, "grid columns (default GRID_COLS)")
	return cmd
}
