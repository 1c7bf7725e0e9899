//go:build cli
// +build cli

package main

import (
	"math/rand"

	"github.com/common-nighthawk/go-figure"

	"jewelstock.GO/cmd"
	"jewelstock.GO/config"
	_ "jewelstock.GO/cron/jobs"
)

func main() {
	config.LoadEnv()

	// ASCII banner on start (random font each run)
	fonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "doom", "larry3d", "puffy", "rectangles"}
	fig := figure.NewFigure("Jewelstock", fonts[rand.Intn(len(fonts))], true)
	fig.Print()

	cmd.Execute()
}
