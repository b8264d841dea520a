package main

import (
	_ "github.com/joho/godotenv/autoload"

	"docmark/internal/cli"
)

func main() {
	cli.Execute()
}
