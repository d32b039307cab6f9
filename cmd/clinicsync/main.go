// Package main provides the clinicsync CLI: the field workstation's offline
// cache and sync companion for the mobile-clinic backend.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
