package main

import (
	"log"

	"github.com/joho/godotenv"

	"eventcrm/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on environment")
	}
	app.Run()
}
