package main

import "fund-adjudicator/cmd"

func main() {
	cmd.Execute()
}
