package cmd

import (
	"github.com/spf13/cobra"
)

var (
	listenPort string
	listenBaud int
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Accept leg commands over a serial port",
	Long: `Listen reads one command per line from the serial port and answers
with a line starting with "ok" or "err":

  center | all <a> | set <rb> <lb> <rf> <lf> | right <b> <f> | left <b> <f>
  pattern <name> | convert <angle> [maxDuty] | state`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController()
		if err != nil {
			return err
		}
		defer c.Close()
		if listenPort != "" {
			c.Configuration.Serial.Port = listenPort
		}
		if listenBaud != 0 {
			c.Configuration.Serial.Baud = listenBaud
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return c.ListenSerial(ctx)
	},
}

func init() {
	listenCmd.Flags().StringVar(&listenPort, "port", "", "serial device (default from config)")
	listenCmd.Flags().IntVar(&listenBaud, "baud", 0, "baud rate (default from config)")
	rootCmd.AddCommand(listenCmd)
}
