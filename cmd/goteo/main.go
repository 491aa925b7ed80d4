package main

import (
	"os"

	"github.com/laraxichu/goteo/internal/cli"
)

func main() {
	if err := cli.NewApp(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
