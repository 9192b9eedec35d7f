package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/cliflow/cliflow_backend/routers"
	"github.com/cliflow/cliflow_backend/util"
)

func main() {
	cfg := util.LoadConfig()
	if err := util.DBConnectAndPopulateDBVar(cfg); err != nil {
		fmt.Println(err.Error())
		log.Fatal("couldn't connect to the database")
	}
	fmt.Println("Connected to the database")
	if err := util.CreateTableIfNotExists(); err != nil {
		log.Fatal("Couldn't create tables ", err.Error())
	}
	fmt.Println("Tables Created")

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routers.SetupRoutes(app, cfg)

	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
