package main

import (
	"os"

	"github.com/spf13/cobra"

	db "github.com/calmsacibis995/sprite2/debug"
	"github.com/calmsacibis995/sprite2/hosted"
	"github.com/calmsacibis995/sprite2/kernel"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

var paramFile string

var rootCmd = &cobra.Command{
	Use:   "sprite2",
	Short: "sprite2: the Sprite kernel, hosted",
}

var bootCmd = &cobra.Command{
	Use:   "boot",
	Short: "Boot the kernel and launch the first user program",
	Run: func(cmd *cobra.Command, args []string) {
		param := kernel.NewParam()
		if paramFile != "" {
			p, err := kernel.ReadParam(paramFile)
			if err != nil {
				db.DFatalf("read param %s: %v", paramFile, err)
			}
			param = p
		}
		k := kernel.NewKernel(param, hosted.NewSubsystems(param))
		if err := k.Boot(); err != nil {
			db.DFatalf("boot: %v", err)
		}
		// The kernel was woken (or its park timeout elapsed): orderly
		// exit with success.
		os.Exit(sp.ExitOK)
	},
}

func init() {
	bootCmd.Flags().StringVarP(&paramFile, "param", "p", "", "boot parameter file (yaml)")
	rootCmd.AddCommand(bootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
