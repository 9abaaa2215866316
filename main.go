package main

import "github.com/circleous/orgseer/cmd"

func main() {
	cmd.Execute()
}
