/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"sync"

	"github.com/spf13/cobra"
)

var runServe bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Centre the legs, play the startup sequence and follow the cycle button",
	Long: `Run brings the robot up: every leg is centred, swept to 0 and to 180
degrees, and then the cycle button (if configured) steps through the walk,
wave and demo patterns. A long press centres all legs.

With --serve the HTTP API runs alongside.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController()
		if err != nil {
			return err
		}
		defer c.Close()
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		wg := sync.WaitGroup{}
		if runServe {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := c.StartServer(ctx); err != nil {
					log.Errorf("server: %v", err)
					cancel()
				}
			}()
		}
		err = c.Run(ctx)
		cancel()
		wg.Wait()
		log.Info("cobot finished")
		return err
	},
}

func init() {
	runCmd.Flags().BoolVar(&runServe, "serve", false, "also serve the HTTP API")
	rootCmd.AddCommand(runCmd)
}
