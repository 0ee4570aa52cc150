package server

import (
	"fmt"
	"net/http"
)

const DefaultPort = 8080

type Config struct {
	Port    int
	Timeout int
}

type Handler struct {
	config *Config
}

type Router interface {
	Route(path string) http.Handler
}

func NewHandler(config *Config) *Handler {
	return &Handler{config: config}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "port %d", h.config.Port)
}
