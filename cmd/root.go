/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Seann-Moser/cobot/pkg/controller"
	"github.com/Seann-Moser/cobot/pkg/io"
	"github.com/Seann-Moser/cobot/pkg/logger"
	"github.com/spf13/cobra"
)

var log = logger.Get("cmd")

var (
	cfgFile  string
	logLevel string
	board    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cobot",
	Short: "Servo controller for a four legged robot",
	Long: `cobot turns leg angles (0-180 degrees) into PWM duty values and drives
the four leg servos of the robot through a PCA9685, the Raspberry Pi
hardware PWM or a mock board.

Configuration is read from a YAML file and COBOT_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Setup(os.Stderr, logLevel)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", controller.DefaultConfigFile, "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warning, error)")
	rootCmd.PersistentFlags().StringVar(&board, "board", "", "override the configured board (pca9685, gobot, rpio, mock)")
}

func loadConfiguration() (controller.Configuration, error) {
	cfg, err := controller.LoadConfiguration(cfgFile)
	if err != nil {
		return cfg, err
	}
	if board != "" {
		cfg.IO.Board = board
	}
	return cfg, cfg.Validate()
}

func newController() (*controller.Controller, error) {
	cfg, err := loadConfiguration()
	if err != nil {
		return nil, err
	}
	servos, err := io.New(cfg.IO)
	if err != nil {
		return nil, err
	}
	return controller.New(cfg, servos), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
		case <-ctx.Done():
		}
		signal.Stop(sigs)
		cancel()
	}()
	return ctx, cancel
}
