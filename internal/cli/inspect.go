package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/projectday/postergen/pkg/record"
)

// inspectCommand creates the inspect command for validating a workbook.
func (c *CLI) inspectCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "inspect [workbook.xlsx]",
		Short: "List and validate workbook records",
		Long: `List and validate workbook records.

Reads the workbook, prints one row per record with its project id,
name, and image hint, and flags records with missing required fields.
No posters are generated; use this to check a workbook before a run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			records, err := record.ReadWorkbook(args[0], cfg.Columns)
			if err != nil {
				return err
			}
			return printRecordTable(records)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "layout config file (TOML or JSON)")

	return cmd
}

func printRecordTable(records []record.Record) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	cellStyle := lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	problemStyle := lipgloss.NewStyle().Foreground(colorYellow).Padding(0, 1)

	invalid := 0
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 4 {
				return problemStyle
			}
			return cellStyle
		}).
		Headers("ROW", "ID", "NAME", "IMAGE", "PROBLEMS")

	for _, rec := range records {
		problems := rec.Validate()
		if len(problems) > 0 {
			invalid++
		}
		tbl.Row(
			strconv.Itoa(rec.Row),
			rec.ID,
			rec.Name,
			rec.ImageFile,
			strings.Join(problems, "; "),
		)
	}

	fmt.Println(tbl)
	if invalid > 0 {
		printWarning("%d of %d records have problems", invalid, len(records))
	} else {
		printSuccess("All %d records valid", len(records))
	}
	return nil
}
