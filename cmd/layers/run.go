package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-layers/internal/physics"
	"github.com/vovakirdan/tui-layers/internal/runner"
	"github.com/vovakirdan/tui-layers/internal/storage"
)

var (
	flagTicks       int
	flagRealtime    bool
	flagReportEvery int
	flagNoSave      bool
)

var runCmd = &cobra.Command{
	Use:   "run <scene|file>",
	Short: "Run a scene headlessly",
	Long: `Advance a scene for a number of ticks without a UI, print the final
state of every body and record the run in the database.

The tick count defaults to the scene's own length. Ctrl+C stops the run
early; the partial run is still recorded.

Examples:
  layers run falling
  layers run stack --ticks 1200 --report-every 100
  layers run ./my-scene.yaml --realtime
  layers run headon --no-save`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagTicks, "ticks", 0, "Number of ticks (0 = scene default)")
	runCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Pace ticks at --fps instead of running flat out")
	runCmd.Flags().IntVar(&flagReportEvery, "report-every", 0, "Log progress every n ticks")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record the run")
}

func runRun(_ *cobra.Command, args []string) error {
	s, err := loadScene(args[0])
	if err != nil {
		return err
	}

	logger := log.Default().WithPrefix(s.ID)
	w, err := s.Build(appConfig.Physics, physics.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, runErr := runner.Run(ctx, w, runner.Options{
		Ticks:       flagTicks,
		TickRate:    flagFPS,
		Realtime:    flagRealtime,
		ReportEvery: flagReportEvery,
		Logger:      logger,
	})
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	printStats(stats)

	if !flagNoSave {
		saveStats(stats)
	}
	return nil
}

func printStats(stats runner.Stats) {
	fmt.Printf("Scene %s: %s ticks in %s (%s ticks/s)\n",
		stats.SceneID, humanize.Comma(int64(stats.Ticks)), stats.Elapsed.Round(time.Microsecond),
		humanize.CommafWithDigits(stats.TicksPerSecond(), 0))
	if stats.Interrupted {
		fmt.Println("Stopped early.")
	}
	fmt.Printf("Contacts: %s total, %d peak, player grounded for %s ticks\n",
		humanize.Comma(int64(stats.Collisions)), stats.PeakContacts, humanize.Comma(int64(stats.GroundedTicks)))
	fmt.Printf("Final hash: %016x\n", stats.Final.Hash())
	fmt.Println()
	printBodies(stats.Final.Bodies)
}

func printBodies(bodies []physics.BodyState) {
	maxName := 4 // "Body" header
	for _, b := range bodies {
		maxName = max(maxName, len(b.Name))
	}

	fmt.Printf("  %-*s  %26s  %26s  %s\n", maxName, "Body", "Position", "Velocity", "Contacts")
	for _, b := range bodies {
		flags := ""
		if b.Static {
			flags = " static"
		}
		if b.Immaterial {
			flags += " immaterial"
		}
		fmt.Printf("  %-*s  %8.2f %8.2f %8.2f  %8.3f %8.3f %8.3f  %d%s\n", maxName, b.Name,
			b.Position[0], b.Position[1], b.Position[2],
			b.Velocity[0], b.Velocity[1], b.Velocity[2],
			b.Collisions, flags)
	}
}

// saveStats records the run. A database problem is reported but does not fail
// the command.
func saveStats(stats runner.Stats) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		log.Warn("could not open runs database", "error", err)
		return
	}
	defer store.Close()

	id, err := store.SaveRun(storage.Run{
		SceneID:       stats.SceneID,
		Ticks:         stats.Ticks,
		Collisions:    stats.Collisions,
		PeakContacts:  stats.PeakContacts,
		GroundedTicks: stats.GroundedTicks,
		Elapsed:       stats.Elapsed,
		Interrupted:   stats.Interrupted,
		FinalHash:     stats.Final.Hash(),
		Source:        "cli",
	}, stats.Final.Bodies)
	if err != nil {
		log.Warn("could not save run", "error", err)
		return
	}
	fmt.Printf("\nRecorded as run %s\n", id)
}
