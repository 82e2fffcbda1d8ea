package main

import "github.com/i474232898/weather-coordinator/internal/cli"

func main() {
	cli.Execute()
}
