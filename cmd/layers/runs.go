package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-layers/internal/storage"
)

var flagRunsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [scene]",
	Short: "Show recorded runs",
	Long: `List the most recent runs, optionally for a single scene.

Examples:
  layers runs
  layers runs falling --limit 20
  layers runs show 3f2a9c1e-...
  layers runs stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with the final state of its bodies",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals per scene",
	Args:  cobra.NoArgs,
	RunE:  runRunsStats,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.AddCommand(runsShowCmd, runsStatsCmd, runsDeleteCmd)
}

func openStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening runs database: %w", err)
	}
	return store, nil
}

func runRuns(_ *cobra.Command, args []string) error {
	sceneID := ""
	if len(args) == 1 {
		sceneID = args[0]
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(sceneID, flagRunsLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'layers run <scene>' to record one.")
		return nil
	}

	fmt.Printf("  %-8s  %-10s  %8s  %9s  %-8s  %s\n", "Run", "Scene", "Ticks", "Contacts", "Via", "When")
	fmt.Printf("  %-8s  %-10s  %8s  %9s  %-8s  %s\n", "---", "-----", "-----", "--------", "---", "----")
	for _, r := range runs {
		ticks := humanize.Comma(int64(r.Ticks))
		if r.Interrupted {
			ticks += "*"
		}
		fmt.Printf("  %-8s  %-10s  %8s  %9s  %-8s  %s\n",
			r.ID[:min(8, len(r.ID))], r.SceneID, ticks, humanize.Comma(int64(r.Collisions)),
			r.Source, humanize.Time(r.CreatedAt))
	}
	return nil
}

func runRunsShow(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := findRun(store, args[0])
	if err != nil {
		return err
	}
	bodies, err := store.BodyStates(run.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  Scene:     %s\n", run.SceneID)
	fmt.Printf("  Recorded:  %s (%s) via %s\n", run.CreatedAt.Format(time.DateTime), humanize.Time(run.CreatedAt), run.Source)
	fmt.Printf("  Ticks:     %s", humanize.Comma(int64(run.Ticks)))
	if run.Interrupted {
		fmt.Print(" (stopped early)")
	}
	fmt.Println()
	fmt.Printf("  Took:      %s\n", run.Elapsed)
	fmt.Printf("  Contacts:  %s total, %d peak\n", humanize.Comma(int64(run.Collisions)), run.PeakContacts)
	fmt.Printf("  Grounded:  %s ticks\n", humanize.Comma(int64(run.GroundedTicks)))
	fmt.Printf("  Hash:      %016x\n", run.FinalHash)
	fmt.Println()
	printBodies(bodies)
	return nil
}

// findRun accepts a full run ID or the 8 character prefix shown in listings.
func findRun(store *storage.Store, id string) (*storage.Run, error) {
	run, err := store.RunByID(id)
	if !errors.Is(err, storage.ErrNotFound) {
		return run, err
	}
	recent, err := store.RecentRuns("", 1000)
	if err != nil {
		return nil, err
	}
	var match *storage.Run
	for i := range recent {
		if len(id) >= 4 && len(recent[i].ID) >= len(id) && recent[i].ID[:len(id)] == id {
			if match != nil {
				return nil, fmt.Errorf("run prefix %q is ambiguous", id)
			}
			match = &recent[i]
		}
	}
	if match == nil {
		return nil, storage.ErrNotFound
	}
	return match, nil
}

func runRunsStats(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.SceneStats()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("  %-10s  %5s  %10s  %10s  %10s  %s\n", "Scene", "Runs", "Ticks", "Avg ticks", "Contacts", "Last run")
	for _, id := range ids {
		st := stats[id]
		fmt.Printf("  %-10s  %5d  %10s  %10s  %10s  %s\n", id, st.Runs,
			humanize.Comma(st.TotalTicks), humanize.CommafWithDigits(st.AvgTicks, 1),
			humanize.Comma(st.TotalCollisions), humanize.Time(st.LastRun))
	}
	return nil
}

func runRunsDelete(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := findRun(store, args[0])
	if err != nil {
		return err
	}
	if err := store.DeleteRun(run.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", run.ID)
	return nil
}
