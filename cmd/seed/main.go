// Command seed creates demo accounts for the civic server and prints bearer
// tokens for them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo users and mint bearer tokens for the civic server",
	Long: `seed creates one citizen, one super admin, and a worker plus a
department admin for every municipal department. Configuration is read
from the same environment as the server (DATABASE_URL, JWT_SECRET).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
