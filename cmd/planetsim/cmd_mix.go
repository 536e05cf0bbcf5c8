package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/talgya/planetsim/internal/engine"
	"github.com/talgya/planetsim/internal/kinds"
)

var mixFlags struct {
	years    int
	markdown bool
	all      bool
}

var mixCmd = &cobra.Command{
	Use:   "mix",
	Short: "Show the production mix, optionally after simulating some years",
	RunE:  runMix,
}

func init() {
	f := mixCmd.Flags()
	f.IntVar(&mixFlags.years, "years", 0, "years to simulate before printing")
	f.BoolVar(&mixFlags.markdown, "markdown", false, "render Markdown tables")
	f.BoolVar(&mixFlags.all, "all", false, "include locked processes")
}

func runMix(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sim, err := newSimulation(&cfg)
	if err != nil {
		return err
	}
	eng := engine.NewEngine(sim.CurrentYear())
	eng.OnYear = sim.TickYear
	eng.OnDecade = sim.TickDecade
	if err := eng.RunYears(mixFlags.years); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Production mix in %d\n", sim.CurrentYear())
	renderMix(out, sim)
	fmt.Fprintln(out)
	renderDemand(out, sim)
	return nil
}

func render(out io.Writer, t table.Writer) {
	if mixFlags.markdown {
		fmt.Fprintln(out, t.RenderMarkdown())
		return
	}
	fmt.Fprintln(out, t.Render())
}

// renderMix prints each process's current share next to the share the
// planner is steering it towards.
func renderMix(out io.Writer, sim *engine.Simulation) {
	st := &sim.Game.State
	resourceWeights, feedstockWeights := sim.Ledger.Weights()
	target := sim.Tuning.CalculateMix(st.Processes, st.Demand(), resourceWeights, feedstockWeights, sim.Priority)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Process", "Output", "Share", "Target", "Modifier", "Status", "Change"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	for i, p := range st.Processes {
		if p.Locked && !mixFlags.all {
			continue
		}
		status := p.Status.String()
		if p.Locked {
			status = "locked"
		}
		t.AppendRow(table.Row{
			p.ID, p.Name, p.Output.String(),
			fmt.Sprintf("%.1f%%", p.MixShare*100),
			fmt.Sprintf("%.1f%%", target[i]*100),
			fmt.Sprintf("%.2f", p.OutputModifier),
			status, p.Change.String(),
		})
	}
	render(out, t)
}

// renderDemand prints per-output demand and the scarcity of every input.
func renderDemand(out io.Writer, sim *engine.Simulation) {
	demand := sim.Game.State.Demand()

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Output", "Demand"})
	for o := range kinds.NumOutputs {
		t.AppendRow(table.Row{kinds.Output(o).String(), humanize.SIWithDigits(demand[o], 2, "")})
	}
	render(out, t)

	s := table.NewWriter()
	s.SetStyle(table.StyleLight)
	s.AppendHeader(table.Row{"Input", "Supply", "Demand", "Weight"})
	for r, e := range sim.Ledger.Resources {
		s.AppendRow(table.Row{kinds.Resource(r).String(), humanize.SIWithDigits(e.Supply, 2, ""), humanize.SIWithDigits(e.Demand, 2, ""), fmt.Sprintf("%.3f", e.Weight())})
	}
	for f, e := range sim.Ledger.Feedstocks {
		s.AppendRow(table.Row{kinds.Feedstock(f).String(), humanize.SIWithDigits(e.Supply, 2, ""), humanize.SIWithDigits(e.Demand, 2, ""), fmt.Sprintf("%.3f", e.Weight())})
	}
	render(out, s)
}
