package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhagen/texwatch/internal/domain/project"
)

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage the project registry",
	}
	cmd.AddCommand(projectsAddCmd())
	cmd.AddCommand(projectsRemoveCmd())
	cmd.AddCommand(projectsListCmd())
	return cmd
}

func projectsAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <project-id>",
		Short: "Register a project for tracking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if name == "" {
				name = args[0]
			}

			proj, err := app.projects.Register(context.Background(), project.RegisterRequest{
				ID:   args[0],
				Name: name,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", proj.Name, proj.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the project id)")
	return cmd
}

func projectsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project-id>",
		Short: "Remove a project, its metric series and its working copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := context.Background()
			id := args[0]

			// The series goes first so the registry row's foreign key
			// reference is gone before the project itself.
			if err := app.metrics.DeleteProject(ctx, id); err != nil {
				return err
			}
			if err := app.projects.Remove(ctx, id); err != nil {
				return err
			}
			if err := app.syncer.Remove(id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			return nil
		},
	}
}

func projectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked projects with their current progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := context.Background()
			projects, err := app.projects.List(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tWORDS\tPAGES\tLAST RECORDED")
			for _, proj := range projects {
				summary, err := app.metrics.Summarize(ctx, proj.ID, proj.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					proj.ID, proj.Name,
					formatCount(summary.Words),
					formatCount(summary.Pages),
					formatRecorded(summary.LastRecorded))
			}
			return w.Flush()
		},
	}
}

func formatCount(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func formatRecorded(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
