package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Simplici0/shopcost/internal/boq"
	"github.com/Simplici0/shopcost/internal/pricing"
	"github.com/Simplici0/shopcost/internal/project"
	"github.com/Simplici0/shopcost/internal/store"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		id         string
		formatName string
		out        string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the bill of quantities of a stored project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			database, err := a.openDB(ctx, a.cfg.IsDev())
			if err != nil {
				return err
			}
			defer database.Close()

			st := store.New(database)
			var p pricing.Project
			if id == "" {
				p, err = st.EnsureActive(ctx, func() pricing.Project { return project.New(project.NewID) })
			} else {
				p, err = st.Get(ctx, id)
			}
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}

			doc := boq.Build(p, time.Now(), a.cfg.CurrencySymbol)
			body, _, err := renderBOQ(doc, formatName)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if out == "" {
				out = doc.Filename(formatName)
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Printf("wrote %s (%d bytes)", out, len(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "project id (default: the active project)")
	cmd.Flags().StringVar(&formatName, "format", "txt", "output format: txt, xlsx or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file ("-" for stdout, default derived from the project name)`)
	return cmd
}
