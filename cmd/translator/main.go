package main

import (
	"os"

	"horse.fit/uebersetzer/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
