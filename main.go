package main

import "codereview/cmd"

func main() {
	cmd.Execute()
}
