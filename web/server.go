// Package web serves the inspector: JSON views of a model, its renderer
// table and the GL calls of the last frame, plus actions to poke the model.
package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter wires the inspector routes. Static files come from webPath when it is set.
func NewRouter(s *Scene, webPath string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/model", s.HandlerModel)
	r.HandleFunc("/json/model/{drawable}", s.HandlerDrawable)
	r.HandleFunc("/json/layout", s.HandlerLayout)
	r.HandleFunc("/json/order", s.HandlerOrder)
	r.HandleFunc("/json/frame", s.HandlerFrame)
	r.HandleFunc("/json/trace", s.HandlerTrace)
	r.HandleFunc("/action/drawable/{drawable}/{action}", s.HandlerActionDrawable).Methods("POST")
	r.HandleFunc("/action/scene/{action}", s.HandlerActionScene).Methods("POST")
	r.HandleFunc("/dump/{file}", s.HandlerDump)
	r.HandleFunc("/upload/model", s.HandlerUploadModel).Methods("POST")
	if s.Status != nil {
		r.Handle("/ws/status", s.Status)
	}

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(webPath)))
	}
	return r
}

func StartServer(addr string, s *Scene, webPath string) error {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(NewRouter(s, webPath))
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
