// Command golascan computes N-dimensional scans over lab actuators, serves
// them over HTTP, and acquires them against simulated or remote stages.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/theckman/yacspin"

	"github.com/nasa-jpl/golascan/acquire"
	_ "github.com/nasa-jpl/golascan/adaptive/learner1d"
	_ "github.com/nasa-jpl/golascan/adaptive/learner2d"
	"github.com/nasa-jpl/golascan/config"
	"github.com/nasa-jpl/golascan/mathx"
	"github.com/nasa-jpl/golascan/scan"
	"github.com/nasa-jpl/golascan/util"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is the path of the configuration file
	ConfigFileName = "golascan.yml"

	scanType    string
	scanSubtype string
)

const rootLong = `golascan computes scans over the actuators of lab motion stages and
acquires them, reading 0D detectors at every step.

The configuration is layered: compiled-in defaults, then the YAML file given
by --config (a missing file is fine), then GOLASCAN_ environment variables,
e.g. GOLASCAN_SCAN__STEPS_LIMIT=500.  Use mkconf to write the defaults out.`

func loadConfig() config.Config {
	c, err := config.Load(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	if scanType != "" {
		c.Scan.Type = scan.Type(scanType)
	}
	return c
}

// setSubtype applies the --subtype flag to the selected type
func setSubtype(c config.Config, r *rig) error {
	if scanSubtype == "" {
		return nil
	}
	return r.scanner.SetScanType(c.Scan.Type, scan.Subtype(scanSubtype))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "golascan",
		Short:        "N-dimensional scans over lab actuators",
		Long:         rootLong,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&ConfigFileName, "config", "c", ConfigFileName, "configuration file")
	root.AddCommand(newServeCmd(), newPositionsCmd(), newAcquireCmd(), newMkconfCmd(), newConfCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the scanner, the stages and acquisitions over HTTP",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := loadConfig()
			rg, err := buildRig(c)
			if err != nil {
				return err
			}
			mux, runner := BuildMux(c, rg)
			defer runner.Stop()
			log.Println("now listening for requests at ", c.Addr)
			return http.ListenAndServe(c.Addr, mux)
		},
	}
}

func newPositionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Compute the configured scan and print its positions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := loadConfig()
			rg, err := buildRig(c)
			if err != nil {
				return err
			}
			if err = setSubtype(c, rg); err != nil {
				return err
			}
			info := rg.scanner.Info()
			acts := rg.scanner.Actuators()
			header := []string{"step"}
			for i := 0; i < info.Naxes(); i++ {
				name := fmt.Sprintf("axis%d", i)
				if i < len(acts) {
					name = acts[i]
				}
				header = append(header, name)
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader(header)
			table.SetBorder(false)
			table.SetCenterSeparator("")
			for i, p := range info.Positions {
				row := []string{strconv.Itoa(i)}
				for _, v := range p {
					row = append(row, strconv.FormatFloat(mathx.Round(v, 1e-9), 'g', 6, 64))
				}
				table.Append(row)
			}
			table.Render()
			typ, sub := rg.scanner.ScanType()
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %d steps, shape %s, estimate %g\n",
				typ, sub, info.NSteps, util.IntSliceToCSV(info.Shape()), rg.scanner.Estimate())
			return nil
		},
	}
	cmd.Flags().StringVarP(&scanType, "type", "t", "", "scan type, overrides the configuration")
	cmd.Flags().StringVarP(&scanSubtype, "subtype", "s", "", "scan subtype")
	return cmd
}

func newAcquireCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Acquire the configured scan and write it to a FITS file",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := loadConfig()
			rg, err := buildRig(c)
			if err != nil {
				return err
			}
			if err = setSubtype(c, rg); err != nil {
				return err
			}
			snap := rg.scanner.Snapshot()
			if snap.Overshoot {
				return fmt.Errorf("scan estimate %g exceeds the steps limit", snap.Estimate)
			}

			spinner, err := yacspin.New(yacspin.Config{
				Frequency:         100 * time.Millisecond,
				CharSet:           yacspin.CharSets[14],
				Suffix:            " acquiring",
				SuffixAutoColon:   true,
				StopCharacter:     "✓",
				StopColors:        []string{"fgGreen"},
				StopFailCharacter: "✗",
				StopFailColors:    []string{"fgRed"},
			})
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			if err = spinner.Start(); err != nil {
				return err
			}
			res, err := rg.seq.Run(ctx, snap.Actuators, snap.Params, snap.Info, func(p acquire.Progress) {
				if p.Total > 0 {
					spinner.Message(fmt.Sprintf("step %d/%d", p.Step+1, p.Total))
				} else {
					spinner.Message(fmt.Sprintf("point %d", p.Step+1))
				}
			})
			if err != nil {
				spinner.StopFailMessage(err.Error())
				spinner.StopFail()
				if res == nil || res.Cube.Filled() == 0 {
					return err
				}
			} else {
				spinner.StopMessage(fmt.Sprintf("%d steps", res.Cube.Filled()))
				spinner.Stop()
			}
			if err := writeResult(c.Acquisition.Output, rg.scanner, res); err != nil {
				return err
			}
			log.Printf("wrote %s", c.Acquisition.Output)
			return err
		},
	}
	cmd.Flags().StringVarP(&scanType, "type", "t", "", "scan type, overrides the configuration")
	cmd.Flags().StringVarP(&scanSubtype, "subtype", "s", "", "scan subtype")
	return cmd
}

func newMkconfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkconf",
		Short: "Write the current configuration to the configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := loadConfig()
			f, err := os.Create(ConfigFileName)
			if err != nil {
				return err
			}
			defer f.Close()
			return config.Write(f, c)
		},
	}
}

func newConfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conf",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return config.Write(cmd.OutOrStdout(), loadConfig())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "golascan version %v\n", Version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
