package main

import (
	"academia-backend/cmd/academia-cli/commands"
	"academia-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
