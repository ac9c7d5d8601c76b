package main

import (
	"fmt"

	"go-page-builder/internal/model"
	"go-page-builder/internal/tree"

	"github.com/spf13/cobra"
)

func newPagesCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List, create and delete pages",
	}
	cmd.AddCommand(newPagesListCmd(env), newPagesCreateCmd(env), newPagesDeleteCmd(env))
	return cmd
}

func newPagesListCmd(env *cliEnv) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, or the pages of one project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if projectID != "" {
				p, err := env.pages.GetProject(projectID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Project '%s' (ID: %s)\n", p.Name, p.ID)
				for _, page := range p.Pages {
					fmt.Fprintf(out, "- ID: %s\n  Name: %s\n  Slug: %s\n  Type: %s\n  Components: %d\n\n",
						page.ID, page.Name, page.Slug, page.Type, tree.Count(page.Components))
				}
				return nil
			}

			projects, err := env.pages.ListProjects()
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found. Run 'builder-cli init' to create the demo project.")
				return nil
			}
			for _, p := range projects {
				fmt.Fprintf(out, "- ID: %s\n  Name: %s\n  Pages: %d\n\n", p.ID, p.Name, len(p.Pages))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID whose pages to list")
	return cmd
}

func newPagesCreateCmd(env *cliEnv) *cobra.Command {
	var projectID, projectName, name, pageType string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a page, and its project when --new-project is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if projectID == "" {
				if projectName == "" {
					return fmt.Errorf("either --project or --new-project is required")
				}
				p, err := env.pages.CreateProject(projectName)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Created project '%s' with ID '%s'\n", p.Name, p.ID)
				projectID = p.ID
			}
			page, err := env.pages.CreatePage(projectID, name, model.PageType(pageType))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created page '%s' with ID '%s' (slug: %s)\n", page.Name, page.ID, page.Slug)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "ID of the project to add the page to")
	cmd.Flags().StringVar(&projectName, "new-project", "", "Create a project with this name for the page")
	cmd.Flags().StringVar(&name, "name", "", "Page name (required)")
	cmd.Flags().StringVar(&pageType, "type", string(model.PageCustom), "Page type: landing, about, news, events, contact or custom")
	cmd.MarkFlagsMutuallyExclusive("project", "new-project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPagesDeleteCmd(env *cliEnv) *cobra.Command {
	var projectID, pageID string
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a page, or a whole project when --page is omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := env.pages.GetProject(projectID)
			if err != nil {
				return err
			}

			if pageID == "" {
				if !yes {
					fmt.Fprintf(out, "WARNING: You are about to permanently delete project '%s' (ID: %s) and its %d page(s).\n", p.Name, p.ID, len(p.Pages))
					ok, err := askForConfirmation(cmd.InOrStdin(), out, "Are you sure?")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Deletion cancelled.")
						return nil
					}
				}
				if err := env.pages.DeleteProject(p.ID); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted project '%s' (ID: %s).\n", p.Name, p.ID)
				return nil
			}

			page, err := env.pages.GetPage(projectID, pageID)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := askForConfirmation(cmd.InOrStdin(), out, fmt.Sprintf("Delete page '%s' (ID: %s)?", page.Name, page.ID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Deletion cancelled.")
					return nil
				}
			}
			if err := env.pages.DeletePage(projectID, pageID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted page '%s' (ID: %s).\n", page.Name, page.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&pageID, "page", "", "Page ID")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
