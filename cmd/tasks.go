package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tasksUserID string

// tasksCmd groups task-instance subcommands.
var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect generated task instances",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's generated tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		instances, err := s.ListTaskInstances(cmd.Context(), tasksUserID)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}

		if isJSON() {
			return printJSON(instances)
		}
		if len(instances) == 0 {
			fmt.Println("No tasks yet. Run 'nestkeeper generate' for a scope.")
			return nil
		}
		for _, inst := range instances {
			location := inst.Location
			if location == "" {
				location = "-"
			}
			fmt.Printf("%-10s due %s  [%s]  %-30s %s\n",
				inst.Status, inst.DueDate.Format("2006-01-02"), inst.Criticality, inst.Title, location)
		}
		return nil
	},
}

func init() {
	tasksListCmd.Flags().StringVarP(&tasksUserID, "user", "u", "", "user id whose tasks to list")
	_ = tasksListCmd.MarkFlagRequired("user")
	tasksCmd.AddCommand(tasksListCmd)
	rootCmd.AddCommand(tasksCmd)
}
