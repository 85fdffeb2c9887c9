package main

import (
	"covidtracker/cmd/covid-cli/commands"
	"covidtracker/lib/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
