package cmd

import (
	"github.com/spf13/cobra"
)

var serveAddress string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and websocket control API",
	Long: `Serve exposes the legs over HTTP:

  GET  /api/state            current angle, pulse and duty of every leg
  POST /api/angles           JSON pose, e.g. {"rightBack": 45}
  POST /api/all/{angle}      move every leg
  POST /api/pattern/{name}   play walk, wave, demo or startup
  GET  /api/convert?angle=   angle -> pulse -> duty -> angle
  GET  /api/ws               websocket stream of the state`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController()
		if err != nil {
			return err
		}
		defer c.Close()
		if serveAddress != "" {
			c.Configuration.Address = serveAddress
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		if err := c.CenterAllServos(); err != nil {
			return err
		}
		return c.StartServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
