package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/gif"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file.gif>",
		Short: "Show the block layout of a GIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidatePath(args[0]); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if os.IsNotExist(err) {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", args[0])
			}
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			l, hit, err := runner.Inspect(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			info := gif.Describe(data, l)
			if asJSON {
				return writeInfoJSON(cmd.OutOrStdout(), info)
			}
			printInfoSummary(args[0], info, hit)
			fmt.Fprintln(cmd.OutOrStdout(), sectionTable(info))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	return cmd
}

func writeInfoJSON(w io.Writer, info gif.Info) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func printInfoSummary(path string, info gif.Info, cached bool) {
	fmt.Println(StyleTitle.Render(path))
	printKeyValue("size", fmt.Sprintf("%d bytes", info.Size))
	printKeyValue("frames", strconv.Itoa(info.Frames))
	printKeyValue("duration", fmt.Sprintf("%.2fs", float64(info.TotalDelay())/100))
	loop := "none"
	if info.Loop != nil {
		loop = strconv.Itoa(int(*info.Loop))
		if *info.Loop == 0 {
			loop = "forever"
		}
	}
	printKeyValue("loop", loop)
	if info.Trailing > 0 {
		printWarning("%d bytes after the trailer are ignored", info.Trailing)
	}
	if cached {
		printDetail("layout from cache")
	}
	printNewline()
}

// sectionTable renders one row per section. Frame rows carry their delay.
func sectionTable(info gif.Info) string {
	rows := make([][]string, 0, len(info.Sections))
	frame := 0
	for i, s := range info.Sections {
		delay := ""
		if s.Kind == gif.KindShuffle {
			delay = strconv.Itoa(int(info.Delays[frame]))
			frame++
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			s.Kind.String(),
			s.Block.String(),
			strconv.Itoa(s.Start),
			strconv.Itoa(s.Len()),
			delay,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Kind", "Block", "Offset", "Bytes", "Delay").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if row < len(info.Sections) && info.Sections[row].Kind == gif.KindShuffle {
				return cell.Foreground(colorCyan)
			}
			return cell.Foreground(colorGray)
		}).
		Render()
}
