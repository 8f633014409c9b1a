package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var divesCmd = &cobra.Command{
	Use:   "dives",
	Short: "List the dives and sites parsed from a Subsurface log",
	Long: `Parses a Subsurface log the same way tag does and prints every dive with its
start, duration, site and GPS. Dives at sites without GPS can never be
matched; they are marked in the last column.`,
	RunE: runDives,
}

func init() {
	rootCmd.AddCommand(divesCmd)

	divesCmd.Flags().StringVarP(&subsurfacePath, "subsurface", "s", "", "Subsurface dive log (.ssrf or .xml)")
}

func runDives(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	book, _, err := loadLogbook(out)
	if err != nil {
		return err
	}
	if len(book.Dives) == 0 {
		fmt.Fprintln(out, "No dives found.")
		return nil
	}

	rows := make([][]string, 0, len(book.Dives))
	unlocated := 0
	for _, d := range book.Dives {
		site, _ := book.SiteFor(d)
		note := ""
		if !site.Located() {
			note = "no GPS"
			unlocated++
		}
		rows = append(rows, []string{
			strconv.Itoa(d.Number),
			d.Start.Format("2006-01-02 15:04"),
			d.Duration.String(),
			site.Name,
			formatGPS(site),
			strings.Join(d.Tags, ", "),
			note,
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Start", "Duration", "Site", "GPS", "Tags", ""},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight},
	))
	if unlocated > 0 {
		fmt.Fprintf(out, "%d dives are at sites without GPS and will never be matched.\n", unlocated)
	}
	return nil
}
