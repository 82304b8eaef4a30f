package main

import (
	"github.com/liveops-hq/backend/cmd/app"
)

func main() {
	app.Run()
}
