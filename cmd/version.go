package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags:
//
//	go build -ldflags="-X github.com/jacklau/termmeter/cmd.version=1.0.0"
var version = "dev"

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of termmeter",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString(versionShort))
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}

// versionString renders the version line, with the Go toolchain and platform
// unless short is set.
func versionString(short bool) string {
	if short {
		return version
	}
	return fmt.Sprintf("termmeter %s (%s %s/%s)", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
