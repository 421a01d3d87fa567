package main

import (
	"fmt"
	"os"

	"github.com/rerankd/rerankd/api/services/rerankd"
	"github.com/rerankd/rerankd/cmd/rerankd/libs"
	"github.com/rerankd/rerankd/cmd/rerankd/pull"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rerankd",
	Short: "Hardware accelerated document reranking",
	Long:  "Hardware accelerated document reranking with a cross-encoder model running on llama.cpp via yzma. Rerankd scores documents against a question and serves the results over a small HTTP API.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
	rootCmd.SetVersionTemplate(version)

	serveCmd.Flags().Bool("usage", false, "Print the full environment variable configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(libsCmd)
	rootCmd.AddCommand(pullCmd)
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start", "server"},
	Short:   "Start the rerankd server",
	Long: `Start the rerankd server

Environment Variables:
      RERANKD_WEB_API_HOST          (default: 0.0.0.0:8000)     IP Address for the rerankd server
      RERANKD_MODEL_REF             (default: bge-reranker-v2)  Model file path or download URL
      RERANKD_MODEL_INSTANCES       (default: 1)                Maximum number of parallel scoring requests
      RERANKD_MODEL_CONTEXT_WINDOW  (default: 4096)             Context window to use for scoring
      RERANKD_PROCESSOR             (default: cpu)              Options: cpu, cuda, metal, vulkan
      RERANKD_DEVICE_INDEX          (default: 0)                Accelerator device ordinal to use
      RERANKD_DEVICE_VISIBLE        (default: all)              Comma separated device ordinals the service may use
      RERANKD_DEBUG                 (default: false)            Include diagnostics in /healthz responses`,
	Run: runServe,
}

var libsCmd = &cobra.Command{
	Use:   "libs",
	Short: "Install or upgrade llama.cpp libraries",
	Long: `Install or upgrade llama.cpp libraries

Environment Variables:
      RERANKD_PROCESSOR  (default: cpu)  Options: cpu, cuda, metal, vulkan`,
	Run: runLibs,
}

var pullCmd = &cobra.Command{
	Use:   "pull <MODEL_URL>",
	Short: "Pull a model from a registry",
	Long: `Pull a model from a registry

Environment Variables:
      RERANKD_BASE_PATH  (default: $HOME/.rerankd)  The path to the base directory`,
	Args: cobra.ExactArgs(1),
	Run:  runPull,
}

func runServe(cmd *cobra.Command, args []string) {
	showUsage, _ := cmd.Flags().GetBool("usage")

	if err := rerankd.Run(showUsage); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func runLibs(cmd *cobra.Command, args []string) {
	if err := libs.Run(args); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func runPull(cmd *cobra.Command, args []string) {
	if err := pull.Run(args); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}
