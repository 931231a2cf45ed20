package main

import "github.com/SoarinFerret/DayTracker/cmd/dtctl/arg"

func main() {
	arg.Execute()
}
