package cmd

import (
	"fmt"

	"github.com/Seann-Moser/cobot/pkg/servo"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	convertMaxDuty uint32
	convertBits    uint
	convertStep    uint32
	convertDuty    int64
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Print the angle to duty table for a timer resolution",
	Long: `Convert prints angle -> pulse width -> duty -> angle for every step
between 0 and 180 degrees, flagging round trips that lose more than two
degrees. No hardware is touched.

  cobot convert --bits 10
  cobot convert --max-duty 4096 --step 5
  cobot convert --bits 16 --duty 4915`,
	RunE: func(cmd *cobra.Command, args []string) error {
		maxDuty := convertMaxDuty
		if cmd.Flags().Changed("bits") {
			if convertBits == 0 || convertBits > 31 {
				return errors.Errorf("bits must be between 1 and 31")
			}
			maxDuty = 1 << convertBits
		}
		if maxDuty == 0 {
			return errors.Errorf("max duty must be positive")
		}

		header := color.New(color.FgCyan, color.Bold).SprintfFunc()
		warn := color.New(color.FgYellow).SprintfFunc()

		if convertDuty >= 0 {
			duty := uint32(convertDuty)
			fmt.Printf("%s %d/%d -> %d°\n", header("duty"), duty, maxDuty, servo.DutyToAngle(duty, maxDuty))
			return nil
		}
		if convertStep == 0 {
			convertStep = 1
		}

		fmt.Println(header("%6s %8s %8s %8s %6s", "angle", "pulse", "duty", "back", "%"))
		for a := uint32(0); a <= servo.MaxAngle; a += convertStep {
			duty := servo.AngleToDuty(a, maxDuty)
			back := servo.DutyToAngle(duty, maxDuty)
			line := fmt.Sprintf("%6d %6dµs %8d %8d %6.2f", a, servo.AngleToPulse(a), duty, back, float64(duty)*100/float64(maxDuty))
			if a-back > 2 {
				line = warn("%s", line)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().Uint32Var(&convertMaxDuty, "max-duty", 1024, "timer full scale value")
	convertCmd.Flags().UintVar(&convertBits, "bits", 10, "timer resolution in bits (overrides --max-duty)")
	convertCmd.Flags().Uint32Var(&convertStep, "step", 10, "angle increment")
	convertCmd.Flags().Int64Var(&convertDuty, "duty", -1, "convert a single duty value back to an angle")
	rootCmd.AddCommand(convertCmd)
}
