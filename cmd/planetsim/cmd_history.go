package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/talgya/planetsim/internal/persistence"
)

var historyFlags struct {
	dbPath   string
	runID    string
	process  int
	journal  bool
	events   int
	markdown bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a saved run's yearly stats, process history or effect journal",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.dbPath, "db", "", "SQLite database written by 'planetsim run --db' (required)")
	f.StringVar(&historyFlags.runID, "run", "", "run id (default: last saved run)")
	f.IntVar(&historyFlags.process, "process", -1, "show the mix history of one process")
	f.BoolVar(&historyFlags.journal, "journal", false, "show the applied effect journal")
	f.IntVar(&historyFlags.events, "events", 0, "also show the N most recent events")
	f.BoolVar(&historyFlags.markdown, "markdown", false, "render Markdown tables")

	_ = historyCmd.MarkFlagRequired("db")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	db, err := persistence.Open(historyFlags.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runID := historyFlags.runID
	if runID == "" {
		runID, err = db.GetMeta("last_run")
		if err != nil {
			return errors.New("no saved run in database, pass --run")
		}
	}

	out := cmd.OutOrStdout()
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	switch {
	case historyFlags.journal:
		entries, err := db.Journal(runID)
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
		t.AppendHeader(table.Row{"Year", "Source", "Direction", "Effect", "Region"})
		for _, e := range entries {
			dir := "apply"
			if e.Undo {
				dir = "undo"
			}
			region := "-"
			if e.Region != nil {
				region = fmt.Sprint(*e.Region)
			}
			t.AppendRow(table.Row{e.Year, e.Source, dir, fmt.Sprintf("%s %+v", e.Effect.Kind(), e.Effect), region})
		}

	case historyFlags.process >= 0:
		snaps, err := db.ProcessHistory(runID, historyFlags.process)
		if err != nil {
			return fmt.Errorf("read process history: %w", err)
		}
		if len(snaps) == 0 {
			return fmt.Errorf("no history for process %d in run %s", historyFlags.process, runID)
		}
		fmt.Fprintf(out, "%s (%s)\n", snaps[0].Name, snaps[0].Output)
		t.AppendHeader(table.Row{"Year", "Share", "Modifier", "Status", "Change"})
		for _, s := range snaps {
			t.AppendRow(table.Row{s.Year, fmt.Sprintf("%.1f%%", s.MixShare*100), fmt.Sprintf("%.2f", s.OutputModifier), s.Status, s.Change})
		}

	default:
		years, err := db.Years(runID)
		if err != nil {
			return fmt.Errorf("read years: %w", err)
		}
		t.AppendHeader(table.Row{"Year", "Population", "Emissions", "Temperature", "Outlook", "Habitability", "Shortages"})
		for _, y := range years {
			t.AppendRow(table.Row{
				y.Year,
				humanize.SIWithDigits(y.Population, 2, ""),
				humanize.SIWithDigits(y.Emissions, 2, ""),
				fmt.Sprintf("%+.2f°C", y.Temperature),
				fmt.Sprintf("%.2f", y.Outlook),
				fmt.Sprintf("%.2f", y.Habitability),
				y.Shortages,
			})
		}
	}

	fmt.Fprintf(out, "Run %s\n", runID)
	if historyFlags.markdown {
		fmt.Fprintln(out, t.RenderMarkdown())
	} else {
		fmt.Fprintln(out, t.Render())
	}

	if historyFlags.events > 0 {
		events, err := db.RecentEvents(runID, historyFlags.events)
		if err != nil {
			return fmt.Errorf("read events: %w", err)
		}
		for _, e := range events {
			fmt.Fprintf(out, "%d  [%s] %s\n", e.Year, e.Category, e.Description)
		}
	}
	return nil
}
