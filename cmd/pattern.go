package cmd

import (
	"strings"
	"time"

	"github.com/Seann-Moser/cobot/pkg/controller"
	"github.com/spf13/cobra"
)

var (
	patternDelay  time.Duration
	patternRepeat int
)

var patternCmd = &cobra.Command{
	Use:       "pattern <" + strings.Join(controller.PatternNames(), "|") + ">",
	Short:     "Play a movement pattern",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: controller.PatternNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := controller.PatternByName(args[0])
		if err != nil {
			return err
		}
		c, err := newController()
		if err != nil {
			return err
		}
		defer c.Close()
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		delay := c.Configuration.StepDelay
		if cmd.Flags().Changed("delay") {
			delay = patternDelay
		}
		for i := 0; i < patternRepeat; i++ {
			if err := c.Play(ctx, p, delay); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
		return nil
	},
}

func init() {
	patternCmd.Flags().DurationVar(&patternDelay, "delay", 300*time.Millisecond, "pause after every step")
	patternCmd.Flags().IntVar(&patternRepeat, "repeat", 1, "number of times to play the pattern")
	rootCmd.AddCommand(patternCmd)
}
