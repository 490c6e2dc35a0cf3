package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/itohio/joycursor/pkg/adc"
	"github.com/itohio/joycursor/pkg/config"
	"github.com/itohio/joycursor/pkg/fb"
	"github.com/itohio/joycursor/pkg/pixel"
)

func NewPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}

			ports, err := adc.Ports()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				cmd.Println("No serial ports found")
				return nil
			}

			for _, p := range ports {
				line := bold("%s", p.Name)
				if p.Description != "" {
					line += " " + p.Description
				}
				if p.USB {
					line += fmt.Sprintf(" [USB %s:%s]", p.VID, p.PID)
				}
				cmd.Println(line)
			}
			return nil
		},
	}
}

func NewGeometryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "geometry",
		Short: "Print framebuffer geometry and pixel format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			geom, err := fb.Discover(cfg.Display.Sysfs, cfg.Display.Device)
			if err != nil {
				return err
			}

			cmd.Printf("Device:     %s\n", cfg.Display.Device)
			cmd.Printf("Resolution: %s\n", bold("%dx%d", geom.Width, geom.Height))
			cmd.Printf("Depth:      %d bpp\n", geom.BitsPerPixel)

			format, err := pixel.FormatForDepth(geom.BitsPerPixel)
			if err != nil {
				cmd.Printf("Format:     %s\n", color.RedString("unsupported"))
				return err
			}
			cmd.Printf("Format:     %s\n", color.GreenString(format.String()))
			return nil
		},
	}
}

func NewInitConfigCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config [file]",
		Short: "Write the default configuration",
		Long:  "Write the default configuration to file, or to the --config path when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := configPath
			if len(args) == 1 {
				name = args[0]
			}

			if !force {
				if _, err := os.Stat(name); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", name)
				}
			}

			if err := config.Default().Save(name); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
