package main

import (
	"cookclip/cmd/cookclip/commands"
	"cookclip/lib/util/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
