package main

import "github.com/RaPidRare/Fitness-and-Nutrition-Tracker/cmd/fitlog"

func main() {
	fitlog.Execute()
}
