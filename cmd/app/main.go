package main

import (
	"go.uber.org/fx"

	"github.com/OtabekovsProject/bot-media/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
