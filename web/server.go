package web

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/mogaika/joker_tool/vfs"
)

var ServerDirectory vfs.Directory

// NewRouter serves files of directory d. Static page files are taken from dataPath when it is set.
func NewRouter(d vfs.Directory, dataPath string) *mux.Router {
	ServerDirectory = d

	r := mux.NewRouter()
	r.HandleFunc("/json/pack", HandlerAjaxPack)
	r.HandleFunc("/json/pack/{file}", HandlerAjaxPackFile)
	r.HandleFunc("/json/pack/{file}/{param}", HandlerAjaxPackFileParam)
	r.HandleFunc("/yaml/pack/{file}", HandlerYamlPackFile)
	r.HandleFunc("/yaml/pack/{file}/{param}", HandlerYamlPackFileParam)
	r.HandleFunc("/dump/pack/{file}", HandlerDumpPackFile)
	r.HandleFunc("/dump/pack/{file}/{param}", HandlerDumpPackFileParam)
	r.HandleFunc("/upload/pack/{file}", HandlerUploadPackFile).Methods(http.MethodPost)
	r.HandleFunc("/upload/pack/{file}/{param}", HandlerUploadPackFileParam).Methods(http.MethodPost)
	r.HandleFunc("/ws/status", HandlerStatus)

	if dataPath != "" {
		if st, err := os.Stat(dataPath); err == nil && st.IsDir() {
			r.PathPrefix("/").Handler(http.FileServer(http.Dir(dataPath)))
		} else {
			log.Warn().Str("path", dataPath).Msg("Web data directory not found, static files disabled")
		}
	}
	return r
}

func StartServer(addr string, d vfs.Directory, dataPath string) error {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(NewRouter(d, dataPath))
	h = handlers.LoggingHandler(log.Logger, h)

	log.Info().Str("addr", addr).Str("dir", d.Name()).Msg("Starting server")

	return http.ListenAndServe(addr, h)
}
