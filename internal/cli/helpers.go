package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// parseDate parses a date string in various formats
func parseDate(s string) (time.Time, error) {
	switch s {
	case "", "today":
		return time.Now().Truncate(24 * time.Hour), nil
	case "yesterday":
		return time.Now().Add(-24 * time.Hour).Truncate(24 * time.Hour), nil
	default:
		// Try YYYY-MM-DD format
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
		}
		return t, nil
	}
}

// resolveClientID resolves a client by ID or name
func resolveClientID(ctx context.Context, idOrName string) (int64, error) {
	// Try to parse as ID first
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		// Verify client exists
		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return client.ID, nil
	}

	// Try to find by name
	clients, err := appInstance.ClientRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, client := range clients {
		if strings.EqualFold(client.Name, idOrName) {
			return client.ID, nil
		}
	}
	return 0, fmt.Errorf("client %q not found", idOrName)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// confirmPrompt asks the user a yes/no question
func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N]: ", message)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
