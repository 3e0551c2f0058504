package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/kitty/internal/calculator"
	"github.com/Veraticus/kitty/internal/cli"
	"github.com/Veraticus/kitty/internal/model"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <weekly|monthly> [from-date]",
		Short: "Show when the next contribution is due",
		Long: `Compute the next contribution date for a savings frequency, counting from
today or from the given date (YYYY-MM-DD). Monthly dates that fall past the
end of a shorter month land on its last day.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runSchedule,
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	freq := model.Frequency(strings.ToLower(args[0]))
	if !freq.Valid() {
		return fmt.Errorf("unknown frequency %q: use weekly or monthly", args[0])
	}

	from := time.Now()
	if len(args) == 2 {
		parsed, err := time.ParseInLocation(dateLayout, args[1], time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[1])
		}
		from = parsed
	}

	next := calculator.NextDueDate(freq, from)
	_, err := fmt.Fprint(cmd.OutOrStdout(), cli.RenderSchedule(freq, from, next))
	return err
}
