package column

import (
	"log"

	"github.com/spf13/cobra"
)

// ColumnCmd returns the column parent command
func ColumnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Manage columns",
		Long: `Manage board columns. Columns can be referenced by ID or by title.

The "No Status" and "Closed" system columns are maintained by sync: they
can be renamed and re-sorted but not moved or deleted.`,
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(RenameCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(SortCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func requireFlag(cmd *cobra.Command, name string) {
	if err := cmd.MarkFlagRequired(name); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
}
