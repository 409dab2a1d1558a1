package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
	Long:  `List, add, and update projects for your clients.`,
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var clientID *int64
		if cmd.Flags().Changed("client") {
			clientArg, _ := cmd.Flags().GetString("client")
			resolved, err := resolveClientID(ctx, clientArg)
			if err != nil {
				return fmt.Errorf("failed to resolve client: %w", err)
			}
			clientID = &resolved
		}

		projects, err := appInstance.ProjectRepo.List(ctx, clientID)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		if len(projects) == 0 {
			fmt.Println("No projects found")
			return nil
		}

		fmt.Printf("%-5s %-30s %-10s %-12s %-12s\n", "ID", "Name", "Client", "Status", "Budget")
		fmt.Println("--------------------------------------------------------------------------")

		for _, project := range projects {
			fmt.Printf("%-5d %-30s %-10d %-12s $%-11.2f\n",
				project.ID,
				truncate(project.Name, 30),
				project.ClientID,
				project.Status,
				project.Budget,
			)
		}

		fmt.Printf("\nTotal: %d project(s)\n", len(projects))
		return nil
	},
}

var projectsAddCmd = &cobra.Command{
	Use:   "add [client_id_or_name] [name]",
	Short: "Add a new project for a client",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		project := domain.NewProject(clientID, args[1])
		project.Description, _ = cmd.Flags().GetString("description")
		project.Budget, _ = cmd.Flags().GetFloat64("budget")

		if cmd.Flags().Changed("start") {
			startStr, _ := cmd.Flags().GetString("start")
			start, err := parseDate(startStr)
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			project.StartDate = &start
		}
		if cmd.Flags().Changed("end") {
			endStr, _ := cmd.Flags().GetString("end")
			end, err := parseDate(endStr)
			if err != nil {
				return fmt.Errorf("invalid end date: %w", err)
			}
			project.EndDate = &end
		}

		if err := project.Validate(); err != nil {
			return fmt.Errorf("invalid project: %w", err)
		}

		if err := appInstance.ProjectRepo.Create(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		fmt.Printf("✓ Project created: %s (ID: %d)\n", project.Name, project.ID)
		return nil
	},
}

var projectsSetStatusCmd = &cobra.Command{
	Use:   "set-status [id] [status]",
	Short: "Set a project's status (active, on_hold, completed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		status := domain.ProjectStatus(args[1])
		if !domain.ValidProjectStatus(status) {
			return fmt.Errorf("unknown status %q (expected active, on_hold, or completed)", args[1])
		}

		if err := appInstance.ProjectRepo.SetStatus(ctx, id, status); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		fmt.Printf("✓ Project %d is now %s\n", id, status)
		return nil
	},
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsSetStatusCmd)

	projectsListCmd.Flags().String("client", "", "Filter by client ID or name")

	projectsAddCmd.Flags().String("description", "", "Project description")
	projectsAddCmd.Flags().Float64("budget", 0, "Project budget")
	projectsAddCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	projectsAddCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
}
