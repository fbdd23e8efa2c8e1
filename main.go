package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/qrdesk/qr-admin-api/cmd/app"
)

// @title        QR Admin API
// @version      1.0
// @description  Admin and public API for QR codes, their forms, wishes and prize wheels.
// @BasePath     /api/v1
//
// @contact.name   QR Admin team
// @contact.email  dev@qrdesk.io
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT issued by /auth/login, sent as "Bearer <token>".
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
