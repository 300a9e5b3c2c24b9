package main

import "github.com/featwalk/featwalk/cmd"

func main() {
	cmd.Execute()
}
