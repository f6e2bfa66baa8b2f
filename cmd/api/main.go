package main

import (
	"log"
	"net/http"

	"github.com/Akshat29Upadhyay/chatpdf/internal/api"
	"github.com/Akshat29Upadhyay/chatpdf/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	srv, err := api.NewServer(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("chatpdf api listening on %s llm_providers=%q embed_providers=%q vector_backend=%q file_store=%q",
		cfg.APIAddr, cfg.LLMProviders, cfg.EmbedProviders, cfg.VectorBackend, cfg.FileStore)
	if err := http.ListenAndServe(cfg.APIAddr, srv.Routes()); err != nil {
		log.Fatal(err)
	}
}
