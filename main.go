// Command battmon renders battery-voltage telemetry from a growing text file
// as live vertical bars in the terminal.
package main

import (
	"fmt"
	"os"

	"battmon/app"
	"battmon/config"
	"battmon/logging"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// fallbackScreenHeight is used when the terminal size cannot be queried.
const fallbackScreenHeight = 24

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := config.Default()

	cmd := &cobra.Command{
		Use:   "battmon SOURCE",
		Short: "Live terminal bar chart for battery-voltage telemetry",
		Long: `battmon follows a comma-delimited telemetry file and renders the voltage
of every battery in the B..H data zone as a vertical bar, one frame per
line appended to the file. Press q, Escape, or Ctrl-C to quit.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init()
			applyFileDefaults(cmd, &opts)

			if opts.ScreenHeight == 0 {
				opts.ScreenHeight = detectScreenHeight()
			}

			cfg := config.Resolve(opts)
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Past this point errors are runtime failures, not usage
			// mistakes.
			cmd.SilenceUsage = true
			return app.New(args[0], cfg).Run()
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.ScreenHeight, "screen-height", opts.ScreenHeight, "screen height in lines (0 = detect from the terminal)")
	flags.IntVar(&opts.BarWidth, "bar-width", opts.BarWidth, "voltage value bar width, in columns")
	flags.IntVar(&opts.SpaceBetweenBars, "space-between-bars", opts.SpaceBetweenBars, "space between voltage value bars, in columns")
	flags.IntVar(&opts.VoltsMin, "volts-min", opts.VoltsMin, "min voltage value used on the screen, in volts")
	flags.IntVar(&opts.VoltsMax, "volts-max", opts.VoltsMax, "max voltage value used on the screen, in volts")
	flags.IntVar(&opts.MaxLineLength, "max-line-length", opts.MaxLineLength, "max length of line that is read from the data file, in bytes")
	flags.IntVar(&opts.FrameIntervalMS, "frame-interval", opts.FrameIntervalMS, "time interval between displaying next frame, in milliseconds")
	flags.StringVar(&opts.OutputFile, "output-file", opts.OutputFile, "append input file lines to this file")

	return cmd
}

// applyFileDefaults overlays persisted defaults onto every flag the user did
// not set explicitly. A broken config file only costs the saved defaults,
// never the run.
func applyFileDefaults(cmd *cobra.Command, opts *config.File) {
	saved, firstRun, err := config.Load()
	if err != nil {
		logging.Event("Config file ignored: %v", err)
		return
	}
	if firstRun {
		logging.Event("Created default config file")
	}

	flags := cmd.Flags()
	if !flags.Changed("screen-height") {
		opts.ScreenHeight = saved.ScreenHeight
	}
	if !flags.Changed("bar-width") {
		opts.BarWidth = saved.BarWidth
	}
	if !flags.Changed("space-between-bars") {
		opts.SpaceBetweenBars = saved.SpaceBetweenBars
	}
	if !flags.Changed("volts-min") {
		opts.VoltsMin = saved.VoltsMin
	}
	if !flags.Changed("volts-max") {
		opts.VoltsMax = saved.VoltsMax
	}
	if !flags.Changed("max-line-length") {
		opts.MaxLineLength = saved.MaxLineLength
	}
	if !flags.Changed("frame-interval") {
		opts.FrameIntervalMS = saved.FrameIntervalMS
	}
	if !flags.Changed("output-file") {
		opts.OutputFile = saved.OutputFile
	}
}

// detectScreenHeight asks the terminal for its height.
func detectScreenHeight() int {
	if _, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil && height > 0 {
		return height
	}
	return fallbackScreenHeight
}
