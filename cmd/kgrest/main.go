package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/oseducation/kgrest/cmd/kgrest/app"
)

func main() {
	if err := app.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
