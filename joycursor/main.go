package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/itohio/joycursor/pkg/config"
)

var (
	configPath = "config.yaml"
	logLevel   = ""
)

// Command-line overrides, applied only when the flag is set.
var (
	sourceFlag string
	portFlag   string
	deviceFlag string
	brokerFlag string
)

func setupLogger(levelName string) error {
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.StampMilli,
		})
	}

	return nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.ADC.Source = sourceFlag
	}
	if flags.Changed("port") {
		cfg.Serial.Port = portFlag
	}
	if flags.Changed("device") {
		cfg.Display.Device = deviceFlag
	}
	if flags.Changed("mqtt-broker") {
		cfg.Telemetry.Broker = brokerFlag
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := setupLogger(cfg.Log.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joycursor",
		Short: "joycursor draws a joystick-driven cursor on a Linux framebuffer",
		Long: `joycursor reads a 2-axis analog joystick through an ADC, calibrates it
on the fly and moves a square cursor on a raw framebuffer.

Keep the stick at rest for the first couple of seconds after start so the
center can be measured. The range is learned while the stick is moved.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runCursor(cmd.Context(), cfg)
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", logLevel, "log level (trace, debug, info, warn, error), overrides the config file")
	globalFlags.StringVarP(&configPath, "config", "c", configPath, "config file path")
	globalFlags.StringVarP(&deviceFlag, "device", "d", "", "framebuffer device (e.g. /dev/fb0)")

	flags := cmd.Flags()
	flags.StringVarP(&sourceFlag, "source", "s", "", "voltage source (iio, serial, mock)")
	flags.StringVarP(&portFlag, "port", "p", "", "serial port (e.g. /dev/ttyACM0)")
	flags.StringVar(&brokerFlag, "mqtt-broker", "", "MQTT broker URL for telemetry (e.g. tcp://localhost:1883)")

	cmd.AddCommand(
		NewPortsCommand(),
		NewGeometryCommand(),
		NewInitConfigCommand(),
	)

	return cmd
}
