package main

import (
	"os"

	"github.com/zostay/go-mailfix/cmd/mailfix/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
