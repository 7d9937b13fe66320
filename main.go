package main

import "github.com/nestkeeper/nestkeeper/cmd"

func main() {
	cmd.Execute()
}
