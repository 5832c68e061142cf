package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "qwen-tts-server",
	Short: "HTTP gateway over the Qwen3-TTS inference runtime",
	Long: `qwen-tts-server exposes text-to-speech synthesis, voice cloning,
pseudo-streaming, a persisted voice library and a speech translation
pipeline over HTTP, backed by a GPU inference runtime process.

Start the server:
  qwen-tts-server

Start with custom settings:
  qwen-tts-server --listen 0.0.0.0:8000 --runtime http://localhost:8081

Use environment variables:
  QTTS_LISTEN=0.0.0.0:8000 QTTS_RUNTIME_URL=http://localhost:8081 qwen-tts-server`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qwen-tts-server %s\n", Version)
		fmt.Printf("  Commit:     %s\n", Commit)
		fmt.Printf("  Build Date: %s\n", BuildDate)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.Flags().String("listen", "0.0.0.0:8000", "Server listen address")
	rootCmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	rootCmd.Flags().Duration("write-timeout", 300*time.Second, "HTTP write timeout")

	rootCmd.Flags().String("runtime", "http://127.0.0.1:8081", "Inference runtime URL")
	rootCmd.Flags().Duration("runtime-timeout", 120*time.Second, "Runtime request timeout")

	rootCmd.Flags().String("model-cache-dir", "/models", "Local model weight cache directory")
	rootCmd.Flags().Bool("preload", true, "Load models in the background at startup")

	rootCmd.Flags().String("voice-dir", "/data/voices", "Voice library directory")

	rootCmd.Flags().String("api-key", "", "API key for authentication (empty = no auth)")

	rootCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().String("log-format", "json", "Log format (json, text)")

	bindFlags()

	rootCmd.AddCommand(versionCmd)
}

func bindFlags() {
	bindings := []struct {
		key  string
		flag string
	}{
		{"server.listen", "listen"},
		{"server.read_timeout", "read-timeout"},
		{"server.write_timeout", "write-timeout"},
		{"runtime.url", "runtime"},
		{"runtime.timeout", "runtime-timeout"},
		{"models.cache_dir", "model-cache-dir"},
		{"models.preload_on_start", "preload"},
		{"library.dir", "voice-dir"},
		{"auth.api_key", "api-key"},
		{"logging.level", "log-level"},
		{"logging.format", "log-format"},
	}

	for _, b := range bindings {
		flag := rootCmd.Flags().Lookup(b.flag)
		if flag == nil {
			continue
		}
		_ = viper.BindPFlag(b.key, flag)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("QTTS")
	viper.AutomaticEnv()

	bindFlags()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
