package main

import (
	"log"

	"news_miner/internal/app"
	"news_miner/internal/config"
)

func main() {
	config, err := config.LoadConfig("config.yaml")

	if err != nil {
		panic(err)
	}

	app, err := app.NewMinerApp(config)

	if err != nil {
		panic(err)
	}

	err = app.Run()

	if err != nil {
		panic(err)
	}

	log.Println("Miner successfully finished")
}
