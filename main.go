package main

import "github.com/Tiliavir/field-day-tracker/cmd"

func main() {
	cmd.Execute()
}
