package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/http"

	mw "calliope_members/internal/api/middlewares"
	"calliope_members/internal/api/routers"
	"calliope_members/internal/config"
	"calliope_members/internal/repositories/sqlconnect"
	"calliope_members/pkg/cron"
	"calliope_members/pkg/utils"

	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		return
	}

	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.Logger.Fatal("invalid configuration: ", err)
	}

	err = sqlconnect.ConnectDb(cfg)
	if err != nil {
		utils.Logger.Fatal("DB connection failed: ", err)
	}

	scheduler := cron.StartCronJob(sqlconnect.DB)
	defer scheduler.Stop()

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	router := routers.MainRouter()
	jwtMiddleware := mw.MiddlewaresExcludePaths(mw.JWTMiddleware,
		"/auth/login", "/members/register", "/payments/webhook", "/payments/checkout")

	secureMux := jwtMiddleware(mw.SecurityHeaders(router))

	server := &http.Server{
		Addr:      cfg.ServerPort,
		Handler:   secureMux,
		TLSConfig: tlsConfig,
	}

	fmt.Println("Server is running on port", cfg.ServerPort)
	err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		log.Fatalln("Error starting the server", err)
	}

}
