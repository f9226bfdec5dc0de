// Mailkit — compose markdown email and send it over SMTP with
// credentials resolved from a file, explicit flags, a provider
// preset, or the system keyring.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailkit",
	Short: "Compose markdown email and dispatch it over SMTP.",
	Long: `Mailkit renders markdown message blocks into multipart HTML email and
dispatches them over SMTP. Credentials come from one of four sources:
an explicit credentials file, explicit flags, a provider preset, or an
entry in the system keyring created with "mailkit creds create-key".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(credsCmd, sendCmd, logCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
