package main

import (
	"github.com/bornholm/skimmer/internal/command"
	"github.com/bornholm/skimmer/internal/command/lookup"
	"github.com/bornholm/skimmer/internal/command/scrape"
)

var version = "dev"

func main() {
	command.Main(
		"skimmer",
		version,
		"Search the web, scrape the top results and save the readable text as markdown",
		scrape.Scrape(),
		lookup.Lookup(),
	)
}
