package main

import "github.com/Tiliavir/standup/cmd"

func main() {
	cmd.Execute()
}
