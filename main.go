package main

import "backend-infra/cmd"

func main() {
	cmd.Execute()
}
