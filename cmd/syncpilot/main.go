package main

import (
	"fmt"
	"os"

	"github.com/AIR-hl/syncpilot/internal/client"
	"github.com/AIR-hl/syncpilot/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	var app client.Client
	app, err := client.NewApp(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))
	if err != nil {
		fmt.Fprintf(os.Stderr, "syncpilot: %v\n", err)
		os.Exit(1)
	}

	if err = app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "syncpilot: %v\n", err)
		os.Exit(1)
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
