package main

import (
	"os"

	"github.com/weibeld/github-projects-dashboard/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
