package main

import (
	"feedsim/cmd"
)

func main() {
	cmd.Execute()
}
