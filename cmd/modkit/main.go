package main

import (
	"github.com/joho/godotenv"
	"github.com/santiagomed/modkit/cli"
)

func main() {
	// MODKIT_* settings may come from a .env next to the project.
	_ = godotenv.Load()
	cli.Execute()
}
