// Command pcdtool inspects and transcodes PCD files.
//
//	pcdtool info scan.pcd
//	pcdtool convert scan.pcd out.pcd --format binary_compressed
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pcdgo"
	"github.com/hupe1980/pcdgo/header"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "pcdtool",
	Short:         "Inspect and transcode PCD point cloud files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print header and column summary of a PCD file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cloud, err := pcdgo.Open(args[0], readOptions()...)
		if err != nil {
			return err
		}
		defer cloud.Close()

		h := cloud.Header
		fmt.Printf("version:   %s\n", h.Version)
		fmt.Printf("format:    %s\n", h.Data)
		fmt.Printf("points:    %d (%dx%d)\n", h.Points, h.Width, h.Height)
		fmt.Printf("stride:    %d bytes\n", h.Stride())
		fmt.Printf("viewpoint: %v\n", h.Viewpoint)
		fmt.Println("fields:")
		for _, f := range h.Fields {
			fmt.Printf("  %-12s %s", f.Name, f.Type)
			if f.Count > 1 {
				fmt.Printf(" x%d", f.Count)
			}
			if _, ok := cloud.Block.Column(f.Name); !ok {
				fmt.Print(" (padding)")
			}
			fmt.Println()
		}
		return nil
	},
}

var convertFormat string

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Transcode a PCD file between ascii, binary and binary_compressed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := header.ParseDataFormat(convertFormat)
		if err != nil {
			return err
		}

		cloud, err := pcdgo.Open(args[0], readOptions()...)
		if err != nil {
			return err
		}
		defer cloud.Close()

		err = pcdgo.WriteFile(args[1], cloud.Block, format,
			pcdgo.WithViewpoint(cloud.Header.Viewpoint),
			pcdgo.WithDimensions(cloud.Header.Width, cloud.Header.Height),
			pcdgo.WithVersion(cloud.Header.Version),
		)
		if err != nil {
			return err
		}

		fmt.Printf("%s => %s (%s, %d points)\n", args[0], args[1], format, cloud.Header.Points)
		return nil
	},
}

func readOptions() []pcdgo.Option {
	if !verbose {
		return nil
	}
	return []pcdgo.Option{pcdgo.WithLogger(pcdgo.NewTextLogger(slog.LevelDebug))}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log decode diagnostics")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "binary", "output format: ascii, binary or binary_compressed")
	rootCmd.AddCommand(infoCmd, convertCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
