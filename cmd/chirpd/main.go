// Chirpd discovers Chirp soil sensors on a Linux I2C bus and publishes
// their readings.
//
// Usage:
//
//	chirpd [command] [flags]
//
// "run" starts the daemon (bus service plus optional MQTT bridge). The other
// commands perform one action against the bus and exit.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	configPath string
	logLevel   string
	busName    string
)

var rootCmd = &cobra.Command{
	Use:   "chirpd",
	Short: "Chirp soil sensor manager",
	Long: `Discovers Chirp I2C soil sensors, tracks them as they come and go,
and publishes moisture, temperature and light readings.

Labels and address changes persist in a local bbolt database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&busName, "bus", "", "I2C bus name (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(setAddressCmd)
	rootCmd.AddCommand(setLabelCmd)
}
