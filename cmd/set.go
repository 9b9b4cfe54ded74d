package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <angle> | set <rightBack> <leftBack> <rightFront> <leftFront>",
	Short: "Move the legs to fixed angles",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 4 {
			return errors.Errorf("expected 1 or 4 angles, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		angles, err := parseAngles(args)
		if err != nil {
			return err
		}
		// The controller is not closed: closing centres the legs again.
		c, err := newController()
		if err != nil {
			return err
		}
		if len(angles) == 1 {
			err = c.SetAllServosAngle(angles[0])
		} else {
			err = c.SetServoAngles(angles[0], angles[1], angles[2], angles[3])
		}
		if err != nil {
			return err
		}
		for _, leg := range c.State().Legs {
			fmt.Printf("%-16s channel %2d  %3d°  %4dµs  duty %d\n", leg.Name, leg.Channel, leg.Angle, leg.PulseUS, leg.Duty)
		}
		return nil
	},
}

func parseAngles(args []string) ([]uint32, error) {
	out := make([]uint32, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, errors.Errorf("bad angle %q", a)
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(setCmd)
}
