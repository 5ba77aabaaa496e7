package main

import "github.com/firefly-oss/lib-session-manager/cmd/sessiond/cmd"

func main() {
	cmd.Execute()
}
