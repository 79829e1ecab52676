package main

import (
	"inzetbooster/cmd/inzetbooster/commands"
	"inzetbooster/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
