package main

import "github.com/qtix/ticket-gateway/cmd"

func main() {
	cmd.Execute()
}
