package main

import "github.com/tms/timesheet-management/cmd"

func main() {
	cmd.Execute()
}
