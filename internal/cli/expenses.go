package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/spf13/cobra"
)

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Track business expenses",
	Long:  `Record and list business expenses. Expenses feed the tax estimate.`,
}

var expensesAddCmd = &cobra.Command{
	Use:   "add [amount]",
	Short: "Record an expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		amount, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}

		dateStr, _ := cmd.Flags().GetString("date")
		expenseDate, err := parseDate(dateStr)
		if err != nil {
			return fmt.Errorf("invalid expense date: %w", err)
		}

		expense := &domain.Expense{
			Amount:      amount,
			ExpenseDate: expenseDate,
		}
		expense.Category, _ = cmd.Flags().GetString("category")
		expense.Vendor, _ = cmd.Flags().GetString("vendor")
		expense.ReceiptPath, _ = cmd.Flags().GetString("receipt")
		expense.Notes, _ = cmd.Flags().GetString("notes")

		if cmd.Flags().Changed("project") {
			projectID, _ := cmd.Flags().GetInt64("project")
			if _, err := appInstance.ProjectRepo.GetByID(ctx, projectID); err != nil {
				return fmt.Errorf("failed to get project: %w", err)
			}
			expense.ProjectID = &projectID
		}

		if err := expense.Validate(); err != nil {
			return fmt.Errorf("invalid expense: %w", err)
		}

		if err := appInstance.ExpenseRepo.Create(ctx, expense); err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}

		fmt.Printf("✓ Expense recorded: $%.2f (ID: %d)\n", expense.Amount, expense.ID)
		return nil
	},
}

var expensesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		expenses, err := appInstance.ExpenseRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}

		if len(expenses) == 0 {
			fmt.Println("No expenses found")
			return nil
		}

		fmt.Printf("%-5s %-12s %-12s %-20s %-20s\n", "ID", "Date", "Amount", "Category", "Vendor")
		fmt.Println("----------------------------------------------------------------------------")

		var total float64
		for _, expense := range expenses {
			fmt.Printf("%-5d %-12s $%-11.2f %-20s %-20s\n",
				expense.ID,
				expense.ExpenseDate.Format("2006-01-02"),
				expense.Amount,
				truncate(expense.Category, 20),
				truncate(expense.Vendor, 20),
			)
			total += expense.Amount
		}

		fmt.Printf("\nTotal: $%.2f across %d expense(s)\n", total, len(expenses))
		return nil
	},
}

func init() {
	expensesCmd.AddCommand(expensesAddCmd)
	expensesCmd.AddCommand(expensesListCmd)

	expensesAddCmd.Flags().String("date", "", "Expense date (YYYY-MM-DD, default today)")
	expensesAddCmd.Flags().String("category", "", "Expense category")
	expensesAddCmd.Flags().String("vendor", "", "Vendor name")
	expensesAddCmd.Flags().String("receipt", "", "Path to receipt file")
	expensesAddCmd.Flags().String("notes", "", "Notes")
	expensesAddCmd.Flags().Int64("project", 0, "Attach to project ID")
}
