package main

import "cms-maintenance/cmd/cms/cmd"

func main() {
	cmd.Execute()
}
