package main

import (
	"os"
)

func main() {
	if err := newRootCmd(&env{}).Execute(); err != nil {
		os.Exit(1)
	}
}
