package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rapbattle",
	Short: "RapBattle - AI rap debate arena",
	Long: `RapBattle hosts interactive AI rap debates: two personas trade
verses for and against a topic over three escalating rounds, an AI judge
scores the transcript, and a persistent leaderboard tracks wins.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Global flags can be added here
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is .env)")
}
