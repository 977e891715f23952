package main

import (
	"postfeed/pkg/config"
	app "postfeed/services/mailer/internal/app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.SMTPUser == "" || cfg.SMTPPassword == "" {
		panic("EMAIL and PASSWORD must be set in environment variables")
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
