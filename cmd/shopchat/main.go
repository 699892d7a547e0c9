package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "shopchat"}

	root.AddCommand(serveCMD(), migrateCMD(), seedCMD())
	_ = root.Execute()
}
