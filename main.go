package main

import "marketplace-analyzer/cmd"

func main() {
	cmd.Execute()
}
