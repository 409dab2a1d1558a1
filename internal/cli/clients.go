package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  `List, add, and edit clients, and issue portal tokens.`,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clients, err := appInstance.ClientRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-30s %-30s %-15s\n", "ID", "Name", "Email", "Phone")
		fmt.Println("--------------------------------------------------------------------------------")

		for _, client := range clients {
			fmt.Printf("%-5d %-30s %-30s %-15s\n",
				client.ID,
				truncate(client.Name, 30),
				truncate(client.Email, 30),
				truncate(client.Phone, 15),
			)
		}

		fmt.Printf("\nTotal: %d client(s)\n", len(clients))
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		email, _ := cmd.Flags().GetString("email")
		phone, _ := cmd.Flags().GetString("phone")
		notes, _ := cmd.Flags().GetString("notes")

		client := domain.NewClient(args[0])
		client.Email = email
		client.Phone = phone
		client.Notes = notes

		if err := client.Validate(); err != nil {
			return fmt.Errorf("invalid client: %w", err)
		}

		if err := appInstance.ClientRepo.Create(ctx, client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Printf("✓ Client created: %s (ID: %d)\n", client.Name, client.ID)
		return nil
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an existing client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid client ID: %w", err)
		}

		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}

		// Update fields if flags provided
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			client.Name = name
		}
		if cmd.Flags().Changed("email") {
			email, _ := cmd.Flags().GetString("email")
			client.Email = email
		}
		if cmd.Flags().Changed("phone") {
			phone, _ := cmd.Flags().GetString("phone")
			client.Phone = phone
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			client.Notes = notes
		}

		if err := client.Validate(); err != nil {
			return fmt.Errorf("invalid client: %w", err)
		}

		if err := appInstance.ClientRepo.Update(ctx, client); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Printf("✓ Client updated: %s\n", client.Name)
		return nil
	},
}

var clientsTokenCmd = &cobra.Command{
	Use:   "token [id_or_name]",
	Short: "Show a client's portal token, generating one if needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		token, err := appInstance.ClientRepo.EnsurePortalToken(ctx, clientID)
		if err != nil {
			return fmt.Errorf("failed to get portal token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsEditCmd)
	clientsCmd.AddCommand(clientsTokenCmd)

	// Add flags
	clientsAddCmd.Flags().String("email", "", "Client email")
	clientsAddCmd.Flags().String("phone", "", "Client phone")
	clientsAddCmd.Flags().String("notes", "", "Notes")

	// Edit flags
	clientsEditCmd.Flags().String("name", "", "New name")
	clientsEditCmd.Flags().String("email", "", "New email")
	clientsEditCmd.Flags().String("phone", "", "New phone")
	clientsEditCmd.Flags().String("notes", "", "New notes")
}
