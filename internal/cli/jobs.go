package cli

import (
	"context"
	"fmt"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage one-off jobs",
	Long:  `List and add one-off jobs, optionally attached to a project.`,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
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

		jobs, err := appInstance.JobRepo.List(ctx, clientID)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}

		if len(jobs) == 0 {
			fmt.Println("No jobs found")
			return nil
		}

		fmt.Printf("%-5s %-35s %-10s %-12s\n", "ID", "Title", "Client", "Status")
		fmt.Println("------------------------------------------------------------------")

		for _, job := range jobs {
			fmt.Printf("%-5d %-35s %-10d %-12s\n",
				job.ID,
				truncate(job.Title, 35),
				job.ClientID,
				job.Status,
			)
		}

		fmt.Printf("\nTotal: %d job(s)\n", len(jobs))
		return nil
	},
}

var jobsAddCmd = &cobra.Command{
	Use:   "add [client_id_or_name] [title]",
	Short: "Add a new job for a client",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		job := domain.NewJob(clientID, args[1])
		job.Description, _ = cmd.Flags().GetString("description")

		if cmd.Flags().Changed("project") {
			projectID, _ := cmd.Flags().GetInt64("project")
			if _, err := appInstance.ProjectRepo.GetByID(ctx, projectID); err != nil {
				return fmt.Errorf("failed to get project: %w", err)
			}
			job.ProjectID = &projectID
		}

		if err := job.Validate(); err != nil {
			return fmt.Errorf("invalid job: %w", err)
		}

		if err := appInstance.JobRepo.Create(ctx, job); err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}

		fmt.Printf("✓ Job created: %s (ID: %d)\n", job.Title, job.ID)
		return nil
	},
}

func init() {
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsAddCmd)

	jobsListCmd.Flags().String("client", "", "Filter by client ID or name")

	jobsAddCmd.Flags().String("description", "", "Job description")
	jobsAddCmd.Flags().Int64("project", 0, "Attach to project ID")
}
