package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	flagEnvFile  string
	flagDevice   string
	flagLoopback bool
	flagModel    string
	flagLanguage string
	flagAdapter  string

	flagInstallDriver bool
	flagDownloadModel bool
	flagYes           bool
)

var rootCmd = &cobra.Command{
	Use:   "koescript",
	Short: "Live transcription of microphone or system audio via whisper.cpp",
	Long: `koescript captures audio from a microphone or a loopback device and
streams it through whisper.cpp, printing transcripts as they arrive.`,
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List capture and loopback devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDevices()
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Check platform support and optionally install the loopback driver",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Capture audio and transcribe it until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTranslate(cmd.Context())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("koescript v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "env file to load before reading the environment")

	devicesCmd.Flags().StringVar(&flagAdapter, "adapter", "", "audio adapter to query (portaudio or wasapi)")

	initCmd.Flags().BoolVar(&flagInstallDriver, "install-driver", false, "install the loopback driver if missing")
	initCmd.Flags().BoolVar(&flagDownloadModel, "download-model", false, "download the configured whisper model if missing")
	initCmd.Flags().StringVar(&flagModel, "model", "", "whisper model size to check or download")
	initCmd.Flags().BoolVar(&flagYes, "yes", false, "consent to running the installer")

	translateCmd.Flags().StringVar(&flagDevice, "device", "", "device name or ID (default: OS default)")
	translateCmd.Flags().BoolVar(&flagLoopback, "loopback", false, "capture system audio instead of the microphone")
	translateCmd.Flags().StringVar(&flagModel, "model", "", "whisper model size (tiny, base, small, medium, large)")
	translateCmd.Flags().StringVar(&flagLanguage, "language", "", "source language code, or auto")
	translateCmd.Flags().StringVar(&flagAdapter, "adapter", "", "audio adapter (portaudio or wasapi)")

	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
